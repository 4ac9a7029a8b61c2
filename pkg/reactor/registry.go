package reactor

import (
	"sync"

	"github.com/vango-dev/lance/pkg/metrics"
)

// Registry owns the participants created through a runtime, keyed by ID.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Participant
	metrics *metrics.Metrics
}

func newRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		entries: make(map[string]*Participant),
		metrics: m,
	}
}

func (r *Registry) add(p *Participant) {
	r.mu.Lock()
	r.entries[p.id] = p
	r.mu.Unlock()
	r.metrics.ReactorAdded()
}

func (r *Registry) drop(id string) {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok {
		r.metrics.ReactorDropped()
	}
}

func (r *Registry) participant(id string) (*Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[id]
	return p, ok
}

// Lookup returns the live reactor with id. Participants without a template
// and destroyed reactors are not found.
func (r *Registry) Lookup(id string) (*Reactor, bool) {
	p, ok := r.participant(id)
	if !ok || p.view == nil {
		return nil, false
	}
	return p.view, true
}

// Len returns the number of live participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Handle is a non-owning reference to a participant. It is the value the
// bus stores; delivering to a destroyed participant does nothing.
type Handle struct {
	id       string
	registry *Registry
}

// ID returns the participant ID the handle points at.
func (h Handle) ID() string {
	return h.id
}

// SubscriberID implements bus.Subscriber.
func (h Handle) SubscriberID() string {
	return h.id
}

// Catch implements bus.Subscriber by dispatching to the participant, if it
// is still alive.
func (h Handle) Catch(event string, args []any) {
	p, ok := h.registry.participant(h.id)
	if !ok {
		return
	}
	p.Dispatch(event, args...)
}

// Alive reports whether the participant behind h still exists.
func (h Handle) Alive() bool {
	_, ok := h.registry.participant(h.id)
	return ok
}
