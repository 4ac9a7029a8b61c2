// Package synchronizer keeps a group of reactors in step with one shared
// property map.
//
// A Synchronizer pushes only what changed, and only to reactors that
// already declare the changed keys:
//
//	s := synchronizer.New(rt, props.Props{"count": 0}, badge, counter)
//	s.Balance(props.Props{"count": 5})  // badge and counter get count=5
//
// Members are held as reactor.Handles. Reactors destroyed elsewhere are
// skipped and pruned on the next Balance.
package synchronizer

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lance/pkg/metrics"
	"github.com/vango-dev/lance/pkg/props"
	"github.com/vango-dev/lance/pkg/reactor"
)

const tracerName = "lance/synchronizer"

// Synchronizer propagates shared property deltas to its domain.
type Synchronizer struct {
	shared props.Props
	domain []reactor.Handle

	registry *reactor.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New creates a synchronizer holding a copy of initial and includes each of
// reactors in order.
func New(rt *reactor.Runtime, initial props.Props, reactors ...*reactor.Reactor) *Synchronizer {
	shared := initial.Clone()
	if shared == nil {
		shared = make(props.Props)
	}
	s := &Synchronizer{
		shared:   shared,
		registry: rt.Registry(),
		logger:   rt.Logger(),
		metrics:  rt.Metrics(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, r := range reactors {
		s.Include(r)
	}
	return s
}

// Include adds r to the domain and pushes the shared values r declares and
// differs on. Including a reactor twice is reported and otherwise ignored.
func (s *Synchronizer) Include(r *reactor.Reactor) *Synchronizer {
	if r == nil {
		return s
	}
	if s.Contains(r) {
		s.metrics.SyncConflict()
		s.logger.Warn("reactor already synchronized", "reactor", r.ID())
		return s
	}
	s.push(r)
	s.domain = append(s.domain, r.Handle())
	return s
}

// Exclude removes r from the domain. It reports whether r was a member;
// excluding a non-member is a no-op.
func (s *Synchronizer) Exclude(r *reactor.Reactor) bool {
	if r == nil {
		return false
	}
	for i, h := range s.domain {
		if h.ID() == r.ID() {
			s.domain = append(s.domain[:i], s.domain[i+1:]...)
			return true
		}
	}
	s.logger.Debug("exclude of non-member ignored", "reactor", r.ID())
	return false
}

// Contains reports whether r is in the domain.
func (s *Synchronizer) Contains(r *reactor.Reactor) bool {
	for _, h := range s.domain {
		if h.ID() == r.ID() {
			return true
		}
	}
	return false
}

// Len returns the number of domain members, including any destroyed since
// the last Balance.
func (s *Synchronizer) Len() int {
	return len(s.domain)
}

// Shared returns a copy of the shared properties.
func (s *Synchronizer) Shared() props.Props {
	return s.shared.Clone()
}

// Balance merges next into the shared properties. When any value changed it
// pushes each live member its eligible delta. It returns a copy of the full
// shared map.
func (s *Synchronizer) Balance(next props.Props) props.Props {
	return s.BalanceContext(context.Background(), next)
}

// BalanceContext is Balance with a parent context for tracing.
func (s *Synchronizer) BalanceContext(ctx context.Context, next props.Props) props.Props {
	changed := s.shared.Merge(next)
	if len(changed) == 0 {
		return s.shared.Clone()
	}

	_, span := s.tracer.Start(ctx, "lance.balance",
		trace.WithAttributes(
			attribute.StringSlice("lance.changed", changed),
			attribute.Int("lance.members", len(s.domain)),
		),
	)
	defer span.End()
	s.metrics.Balance()

	live := s.domain[:0]
	for _, h := range s.domain {
		r, ok := s.registry.Lookup(h.ID())
		if !ok {
			s.logger.Debug("pruning destroyed reactor", "reactor", h.ID())
			continue
		}
		live = append(live, h)
		s.push(r)
	}
	s.domain = live
	return s.shared.Clone()
}

// push sends r the shared values it declares and differs on. When the
// combined delta fails to render, keys are retried one at a time so a bad
// value does not hold back the rest.
func (s *Synchronizer) push(r *reactor.Reactor) {
	delta := r.Props().Eligible(s.shared)
	if len(delta) == 0 {
		return
	}
	s.metrics.SyncPush()
	_, err := r.Set(delta)
	if err == nil {
		return
	}
	if len(delta) == 1 {
		s.logger.Warn("synchronized set failed", "reactor", r.ID(), "error", err)
		return
	}
	for _, key := range delta.Keys() {
		if _, err := r.Set(props.Props{key: delta[key]}); err != nil {
			s.logger.Warn("synchronized set failed", "reactor", r.ID(), "key", key, "error", err)
		}
	}
}
