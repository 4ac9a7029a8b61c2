// Package metrics collects Prometheus metrics for the event bus, reactor
// renders and synchronizers.
//
// A nil *Metrics is valid and records nothing, so packages can accept one
// unconditionally:
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	rt := reactor.NewRuntime(reactor.WithMetrics(m))
//
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metric collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "lance").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metric collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "lance",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	broadcasts     *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	handlerPanics  *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	changes        *prometheus.CounterVec
	liveReactors   prometheus.Gauge
	balances       prometheus.Counter
	syncPushes     prometheus.Counter
	syncConflicts  prometheus.Counter
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		broadcasts:    counterVec("broadcasts_total", "Total number of bus broadcasts", "event"),
		deliveries:    counterVec("deliveries_total", "Total number of subscriber invocations", "event"),
		handlerPanics: counterVec("handler_panics_total", "Total number of recovered subscriber panics", "event"),
		renders:       counterVec("renders_total", "Total number of reactor renders by outcome", "outcome"),
		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Reactor render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		changes: counterVec("reconcile_changes_total", "Total number of live tree writes by operation", "op"),
		liveReactors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_reactors",
			Help:        "Number of reactors held by runtime registries",
			ConstLabels: config.ConstLabels,
		}),
		balances:      counter("sync_balances_total", "Total number of synchronizer balances that changed state"),
		syncPushes:    counter("sync_pushes_total", "Total number of property deltas pushed to reactors"),
		syncConflicts: counter("sync_conflicts_total", "Total number of rejected duplicate includes"),
	}
}

// Broadcast records a broadcast of event reaching n subscribers.
func (m *Metrics) Broadcast(event string, n int) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(event).Inc()
	m.deliveries.WithLabelValues(event).Add(float64(n))
}

// HandlerPanic records a recovered subscriber panic.
func (m *Metrics) HandlerPanic(event string) {
	if m == nil {
		return
	}
	m.handlerPanics.WithLabelValues(event).Inc()
}

// Render records a render. outcome is "initial", "reconciled" or "error".
func (m *Metrics) Render(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(outcome).Inc()
	m.renderDuration.Observe(d.Seconds())
}

// Change records a live tree write of the given operation.
func (m *Metrics) Change(op string) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(op).Inc()
}

// ReactorAdded increments the live reactor gauge.
func (m *Metrics) ReactorAdded() {
	if m == nil {
		return
	}
	m.liveReactors.Inc()
}

// ReactorDropped decrements the live reactor gauge.
func (m *Metrics) ReactorDropped() {
	if m == nil {
		return
	}
	m.liveReactors.Dec()
}

// Balance records a synchronizer balance that changed shared state.
func (m *Metrics) Balance() {
	if m == nil {
		return
	}
	m.balances.Inc()
}

// SyncPush records a delta pushed to one reactor.
func (m *Metrics) SyncPush() {
	if m == nil {
		return
	}
	m.syncPushes.Inc()
}

// SyncConflict records a rejected duplicate include.
func (m *Metrics) SyncConflict() {
	if m == nil {
		return
	}
	m.syncConflicts.Inc()
}
