package lance

import (
	"context"
	"log/slog"

	"github.com/vango-dev/lance/pkg/bus"
	"github.com/vango-dev/lance/pkg/reactor"
	"github.com/vango-dev/lance/pkg/synchronizer"
)

// App owns one event bus and the reactors wired to it.
//
// Create an App with lance.New():
//
//	app := lance.New(lance.Config{Logger: logger})
//	counter, err := app.Reactor(`<p>{n}</p>`, lance.Props{"n": 0}, nil)
type App struct {
	rt     *reactor.Runtime
	config Config
	logger *slog.Logger
}

// New creates an application with its own bus and registry.
func New(cfg Config) *App {
	cfg = cfg.withDefaults()

	b := bus.New(
		bus.WithLogger(cfg.Logger),
		bus.WithMetrics(cfg.Metrics),
		bus.WithTracerName(cfg.TracerName),
	)
	rt := reactor.NewRuntime(
		reactor.WithBus(b),
		reactor.WithLogger(cfg.Logger),
		reactor.WithMetrics(cfg.Metrics),
	)

	return &App{
		rt:     rt,
		config: cfg,
		logger: cfg.Logger,
	}
}

// Runtime returns the underlying reactor runtime.
func (a *App) Runtime() *reactor.Runtime {
	return a.rt
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Reactor builds a reactor from template. When p is non-nil it is
// deep-copied and rendered immediately. Handlers are wired in sorted event
// order.
func (a *App) Reactor(template string, p Props, handlers Handlers) (*Reactor, error) {
	return reactor.New(a.rt, a.options(template, p, handlers))
}

// Participant builds a template-less reactor listening for handlers.
func (a *App) Participant(handlers Handlers) *Participant {
	return reactor.NewParticipant(a.rt, handlers)
}

// Factory captures a reusable reactor blueprint.
func (a *App) Factory(template string, p Props, handlers Handlers) *Factory {
	return reactor.NewFactory(a.rt, a.options(template, p, handlers))
}

// Fire broadcasts event with args to every listening reactor.
func (a *App) Fire(event string, args ...any) {
	a.rt.Fire(event, args...)
}

// FireContext is Fire with a parent context for tracing.
func (a *App) FireContext(ctx context.Context, event string, args ...any) {
	a.rt.FireContext(ctx, event, args...)
}

// Synchronizer creates a synchronizer seeded with initial and including
// reactors in order.
func (a *App) Synchronizer(initial Props, reactors ...*Reactor) *Synchronizer {
	return synchronizer.New(a.rt, initial, reactors...)
}

func (a *App) options(template string, p Props, handlers Handlers) reactor.Options {
	return reactor.Options{
		Template: template,
		Props:    p,
		Handlers: handlers,
		Escape:   a.config.Escape,
	}
}
