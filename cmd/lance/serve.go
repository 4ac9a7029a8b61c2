package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/vango-dev/lance"
	"github.com/vango-dev/lance/internal/config"
	"github.com/vango-dev/lance/internal/errors"
	"github.com/vango-dev/lance/pkg/live"
	"github.com/vango-dev/lance/pkg/metrics"
	"github.com/vango-dev/lance/pkg/source"
)

const (
	counterTemplate = `<div class="counter">` +
		`<button data-event="dec">-</button>` +
		`<span class="value" style="color: {color}">{count}</span>` +
		`<button data-event="inc">+</button>` +
		`</div>`
	badgeTemplate = `<span class="badge" title="{count} clicks">{count}</span>`
)

func serveCmd(logs *logFlags) *cobra.Command {
	var (
		configDir string
		port      int
		host      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live component playground",
		Long: `Serve a counter and a badge kept in step by a synchronizer.

Configuration is read from lance.json in --config, or in the nearest
directory above the working directory that has one (defaults when there
is none), then from LANCE_* environment variables. Templates named
counter.html and badge.html in the template directory or S3 bucket
replace the built-in ones.

Examples:
  lance serve
  lance serve --config ./site --port 8080
  LANCE_METRICS=true lance serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(resolveConfigDir(configDir))
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			logger, err := logs.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", "", "Directory containing lance.json (default: search upward)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from lance.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from lance.json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(metricsOptions(cfg, reg)...)
	}

	app := lance.New(lance.Config{
		Logger:  logger,
		Metrics: m,
		Escape:  cfg.Templates.Escape,
	})

	srv, err := buildPlayground(ctx, app, cfg, reg)
	if err != nil {
		return err
	}

	printBanner(os.Stdout)
	success(os.Stdout, "Serving at http://%s", cfg.Address())
	if cfg.Metrics.Enabled {
		success(os.Stdout, "Metrics at http://%s%s", cfg.Address(), cfg.Metrics.Path)
	}
	fmt.Println()

	return srv.ListenAndServe(ctx, cfg.Address())
}

// resolveConfigDir returns dir, or the nearest directory at or above the
// working directory that holds a lance.json.
func resolveConfigDir(dir string) string {
	if dir != "" {
		return dir
	}
	root, err := config.FindProjectRoot(".")
	if err != nil {
		return "."
	}
	return root
}

// metricsOptions maps the metrics settings onto collector options.
func metricsOptions(cfg *config.Config, reg prometheus.Registerer) []metrics.Option {
	opts := []metrics.Option{
		metrics.WithRegistry(reg),
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
	}
	if len(cfg.Metrics.Labels) > 0 {
		opts = append(opts, metrics.WithConstLabels(prometheus.Labels(cfg.Metrics.Labels)))
	}
	if len(cfg.Metrics.Buckets) > 0 {
		opts = append(opts, metrics.WithBuckets(cfg.Metrics.Buckets))
	}
	return opts
}

// buildPlayground wires the counter and badge reactors to a live server.
func buildPlayground(ctx context.Context, app *lance.App, cfg *config.Config, reg *prometheus.Registry) (*live.Server, error) {
	src := templateSource(cfg)
	counterMarkup, err := loadOrDefault(ctx, src, "counter.html", counterTemplate, app.Logger())
	if err != nil {
		return nil, err
	}
	badgeMarkup, err := loadOrDefault(ctx, src, "badge.html", badgeTemplate, app.Logger())
	if err != nil {
		return nil, err
	}

	counter, err := app.Reactor(counterMarkup, lance.Props{"count": 0, "color": "black"}, nil)
	if err != nil {
		return nil, err
	}
	badge, err := app.Reactor(badgeMarkup, lance.Props{"count": 0}, nil)
	if err != nil {
		return nil, err
	}

	group := app.Synchronizer(lance.Props{"count": 0, "color": "black"}, counter, badge)
	step := func(delta int) lance.Handler {
		return func(args ...any) {
			n := cast.ToInt(group.Shared()["count"]) + delta
			color := "black"
			if n < 0 {
				color = "red"
			}
			group.Balance(lance.Props{"count": n, "color": color})
		}
	}
	app.Participant(lance.Handlers{
		"inc": {step(1)},
		"dec": {step(-1)},
	})

	opts := []live.Option{live.WithTitle(cfg.Name)}
	if reg != nil {
		opts = append(opts, live.WithMetrics(reg, cfg.Metrics.Path))
	}
	srv := live.New(app.Runtime(), opts...)
	srv.Mount("counter", counter)
	srv.Mount("badge", badge)
	return srv, nil
}

func templateSource(cfg *config.Config) source.Source {
	if cfg.UsesS3() {
		return source.NewS3Source(newS3Client(cfg.Templates.S3Region), cfg.Templates.S3Bucket, cfg.Templates.S3Prefix)
	}
	return source.NewDirSource(os.DirFS(cfg.TemplatesPath()))
}

// loadOrDefault returns the named template, or fallback when the source
// does not have it.
func loadOrDefault(ctx context.Context, src source.Source, name, fallback string, logger *slog.Logger) (string, error) {
	markup, err := src.Load(ctx, name)
	if errors.HasCode(err, "L040") {
		logger.Debug("using built-in template", "name", name)
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	logger.Info("loaded template", "name", name)
	return markup, nil
}
