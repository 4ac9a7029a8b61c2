package bus

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lance/pkg/metrics"
)

// Default tracer name for bus spans.
const defaultTracerName = "lance/bus"

// Subscriber receives broadcast events.
type Subscriber interface {
	// SubscriberID identifies the subscriber for Unsubscribe.
	SubscriberID() string

	// Catch handles one delivery of event.
	Catch(event string, args []any)
}

// entry is one subscription. removed is set when the entry is unsubscribed
// so in-flight broadcasts holding a snapshot skip it.
type entry struct {
	sub     Subscriber
	removed bool
}

// Bus is a synchronous publish/subscribe registry.
type Bus struct {
	mu     sync.Mutex
	events map[string][]*entry

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for recovered subscriber panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records broadcast counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithTracerName sets the OpenTelemetry tracer name (default: "lance/bus").
func WithTracerName(name string) Option {
	return func(b *Bus) {
		b.tracer = otel.Tracer(name)
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		events: make(map[string][]*entry),
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register creates an empty subscriber list for event if it has none.
func (b *Bus) Register(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.register(event)
}

func (b *Bus) register(event string) {
	if _, ok := b.events[event]; !ok {
		b.events[event] = nil
	}
}

// Subscribe appends sub to event's list, registering event if needed.
// Subscribing twice yields two deliveries per broadcast.
func (b *Bus) Subscribe(event string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.register(event)
	b.events[event] = append(b.events[event], &entry{sub: sub})
}

// Unsubscribe removes the first subscription of sub to event. It reports
// whether anything was removed; unknown events and subscribers are no-ops.
func (b *Bus) Unsubscribe(event string, sub Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, ok := b.events[event]
	if !ok {
		return false
	}
	id := sub.SubscriberID()
	for i, e := range entries {
		if e.sub.SubscriberID() != id {
			continue
		}
		e.removed = true
		next := make([]*entry, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		b.events[event] = append(next, entries[i+1:]...)
		return true
	}
	return false
}

// Subscribed reports whether sub holds at least one subscription to event.
func (b *Bus) Subscribed(event string, sub Subscriber) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := sub.SubscriberID()
	for _, e := range b.events[event] {
		if e.sub.SubscriberID() == id {
			return true
		}
	}
	return false
}

// Broadcast delivers args to every subscriber of event, in subscription
// order, and returns once all of them have run. Broadcasting an event
// nobody subscribed to registers it and does nothing else.
func (b *Bus) Broadcast(event string, args ...any) {
	b.BroadcastContext(context.Background(), event, args...)
}

// BroadcastContext is Broadcast with a parent context for tracing.
func (b *Bus) BroadcastContext(ctx context.Context, event string, args ...any) {
	b.mu.Lock()
	b.register(event)
	snapshot := make([]*entry, len(b.events[event]))
	copy(snapshot, b.events[event])
	b.mu.Unlock()

	_, span := b.tracer.Start(ctx, "lance.broadcast",
		trace.WithAttributes(
			attribute.String("lance.event", event),
			attribute.Int("lance.subscribers", len(snapshot)),
		),
	)
	defer span.End()

	delivered := 0
	for _, e := range snapshot {
		if b.isRemoved(e) {
			continue
		}
		b.safeCatch(e.sub, event, args)
		delivered++
	}
	b.metrics.Broadcast(event, delivered)
}

func (b *Bus) isRemoved(e *entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return e.removed
}

// safeCatch delivers to one subscriber and recovers from panics so one
// misbehaving subscriber cannot stop delivery to the rest.
func (b *Bus) safeCatch(sub Subscriber, event string, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.HandlerPanic(event)
			b.logger.Error("subscriber panicked",
				"event", event,
				"subscriber", sub.SubscriberID(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	sub.Catch(event, args)
}

// Events returns the registered event names, sorted.
func (b *Bus) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.events))
	for name := range b.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of subscriptions to event.
func (b *Bus) Count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events[event])
}

// Clear removes all events and subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entries := range b.events {
		for _, e := range entries {
			e.removed = true
		}
	}
	b.events = make(map[string][]*entry)
}
