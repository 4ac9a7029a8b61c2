package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lance/internal/config"
	"github.com/vango-dev/lance/internal/errors"
	"github.com/vango-dev/lance/pkg/props"
	"github.com/vango-dev/lance/pkg/reactor"
	"github.com/vango-dev/lance/pkg/source"
	"github.com/vango-dev/lance/pkg/tmpl"
)

type renderOptions struct {
	template  string
	props     []string
	propsFile string
	escape    bool
	strict    bool
	region    string
}

func renderCmd(logs *logFlags) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to HTML",
		Long: `Render a template file or S3 object with the given properties
and print the resulting HTML.

Property values given with --prop are parsed as JSON when they
are valid JSON and used as plain strings otherwise.

Examples:
  lance render card.html --prop title=Hello --prop count=3
  lance render card.html --props card.json --escape
  lance render s3://my-bucket/templates/card.html --prop title=Hi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.template = args[0]
			logger, err := logs.logger(config.New(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt := reactor.NewRuntime(reactor.WithLogger(logger))
			return runRender(cmd.Context(), rt, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArrayVarP(&opts.props, "prop", "p", nil, "Property as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.propsFile, "props", "", "JSON file with an object of properties")
	cmd.Flags().BoolVar(&opts.escape, "escape", false, "HTML-escape property values")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when a placeholder has no property")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region for s3:// templates (default $AWS_REGION)")

	return cmd
}

func runRender(ctx context.Context, rt *reactor.Runtime, opts renderOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	markup, err := loadTemplate(ctx, opts.template, opts.region)
	if err != nil {
		return err
	}

	p := props.Props{}
	if opts.propsFile != "" {
		if p, err = readPropsFile(opts.propsFile); err != nil {
			return err
		}
	}
	flagProps, err := parsePropFlags(opts.props)
	if err != nil {
		return err
	}
	p.Merge(flagProps)

	if missing := tmpl.Missing(markup, p); len(missing) > 0 {
		if opts.strict {
			return errors.New("L001").
				WithPath(opts.template).
				WithDetail("missing: " + strings.Join(missing, ", "))
		}
		warn(errOut, "no property for placeholder(s): %s", strings.Join(missing, ", "))
	}

	r, err := reactor.New(rt, reactor.Options{
		Template: markup,
		Props:    p,
		Escape:   opts.escape,
	})
	if err != nil {
		return errors.FromError(err, "L020").WithPath(opts.template)
	}
	defer r.Destroy()

	_, err = fmt.Fprintln(out, r.HTML())
	return err
}

// loadTemplate reads ref from S3 when it is an s3:// URI and from the local
// file system otherwise.
func loadTemplate(ctx context.Context, ref, region string) (string, error) {
	if bucket, key, ok := source.ParseS3URI(ref); ok {
		return source.NewS3Source(newS3Client(region), bucket, "").Load(ctx, key)
	}
	if strings.HasPrefix(ref, "s3://") {
		return "", errors.New("L040").
			WithPath(ref).
			WithDetail("expected s3://bucket/key")
	}
	dir, name := filepath.Split(ref)
	if dir == "" {
		dir = "."
	}
	return source.NewDirSource(os.DirFS(dir)).Load(ctx, name)
}

// parsePropFlags parses key=value pairs. Values that are valid JSON are
// decoded; anything else is kept as a string.
func parsePropFlags(pairs []string) (props.Props, error) {
	p := make(props.Props, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New("L150").
				WithDetail(fmt.Sprintf("%q is not key=value", pair)).
				WithSuggestion("Use --prop name=value, for example --prop count=3.")
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		p[key] = v
	}
	return p, nil
}

func readPropsFile(path string) (props.Props, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("L150").WithPath(path).Wrap(err)
	}
	var p props.Props
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.New("L150").
			WithPath(path).
			WithDetail("properties file must hold a JSON object").
			Wrap(err)
	}
	if p == nil {
		p = props.Props{}
	}
	return p, nil
}
