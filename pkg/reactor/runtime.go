package reactor

import (
	"context"
	"log/slog"

	"github.com/vango-dev/lance/pkg/bus"
	"github.com/vango-dev/lance/pkg/metrics"
)

// Runtime owns the event bus and the participant registry.
type Runtime struct {
	bus      *bus.Bus
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithBus uses b instead of a fresh bus.
func WithBus(b *bus.Bus) Option {
	return func(rt *Runtime) {
		rt.bus = b
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics records render and registry metrics in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// NewRuntime creates a runtime with its own bus and registry.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{logger: slog.Default()}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.bus == nil {
		rt.bus = bus.New(bus.WithLogger(rt.logger), bus.WithMetrics(rt.metrics))
	}
	rt.registry = newRegistry(rt.metrics)
	return rt
}

// Bus returns the runtime's event bus.
func (rt *Runtime) Bus() *bus.Bus {
	return rt.bus
}

// Registry returns the runtime's participant registry.
func (rt *Runtime) Registry() *Registry {
	return rt.registry
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Metrics returns the runtime metrics, which may be nil.
func (rt *Runtime) Metrics() *metrics.Metrics {
	return rt.metrics
}

// Fire broadcasts event with args to every subscribed participant.
func (rt *Runtime) Fire(event string, args ...any) {
	rt.bus.Broadcast(event, args...)
}

// FireContext is Fire with a parent context for tracing.
func (rt *Runtime) FireContext(ctx context.Context, event string, args ...any) {
	rt.bus.BroadcastContext(ctx, event, args...)
}
