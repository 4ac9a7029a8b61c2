package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lance/internal/config"
	"github.com/vango-dev/lance/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┌┐┌┌─┐┌─┐
  ║  ├─┤││││  ├┤
  ╩═╝┴ ┴┘└┘└─┘└─┘
`

// logFlags are shared by every command.
type logFlags struct {
	level  string
	format string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logs logFlags

	rootCmd := &cobra.Command{
		Use:   "lance",
		Short: "Reactive HTML components driven by events",
		Long: `Lance renders HTML components from templates and keeps them
current as events arrive.

  • Templates with {name} placeholders
  • In-place reconciliation of text, attributes and styles
  • An event bus shared by every component
  • Synchronizers that fan shared state out to components`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logs.level, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logs.format, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		initCmd(),
		renderCmd(&logs),
		serveCmd(&logs),
		versionCmd(),
	)
	return rootCmd
}

// logger applies flag overrides to cfg's log settings and builds a logger
// writing to w.
func (f *logFlags) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if f.level != "" {
		cfg.Log.Level = f.level
	}
	if f.format != "" {
		cfg.Log.Format = f.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.Logger(w), nil
}

// printBanner prints the Lance ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
