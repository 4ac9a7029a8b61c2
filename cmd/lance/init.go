package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lance/internal/config"
	"github.com/vango-dev/lance/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default lance.json",
		Long: `Write a lance.json with default settings into dir (default: the
current directory). An existing file is kept unless --force is given.

Examples:
  lance init
  lance init ./site --name demo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, name, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing lance.json")

	return cmd
}

func runInit(dir, name string, force bool, out io.Writer) error {
	if config.Exists(dir) && !force {
		return errors.New("L125").
			WithPath(filepath.Join(dir, config.ConfigFileName)).
			WithSuggestion("Pass --force to overwrite it.")
	}

	cfg := config.New()
	cfg.Name = name
	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success(out, "Wrote %s", path)
	return nil
}
