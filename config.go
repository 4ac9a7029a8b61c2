package lance

import (
	"log/slog"

	"github.com/vango-dev/lance/pkg/metrics"
)

// DefaultTracerName names the tracer used for broadcast spans.
const DefaultTracerName = "lance"

// Config is the application configuration.
type Config struct {
	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics receives bus, render and synchronizer metrics.
	// If nil, nothing is recorded.
	Metrics *metrics.Metrics

	// TracerName names the OpenTelemetry tracer for broadcast spans.
	// Default: "lance".
	TracerName string

	// Escape HTML-escapes property values in every reactor the app builds.
	Escape bool
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.TracerName == "" {
		c.TracerName = DefaultTracerName
	}
	return c
}
