package reactor

import (
	"sort"

	"github.com/google/uuid"
)

// Handler handles one event delivery. args are the broadcast arguments.
type Handler func(args ...any)

// Handlers maps event names to ordered handler lists.
type Handlers map[string][]Handler

// Participant is a component that only takes part in events.
type Participant struct {
	id        string
	rt        *Runtime
	handlers  map[string][]Handler
	destroyed bool

	// view is the reactor embedding this participant, if any.
	view *Reactor
}

// NewParticipant creates a template-less participant and wires handlers
// through Listen in sorted event order.
func NewParticipant(rt *Runtime, handlers Handlers) *Participant {
	p := newParticipant(rt)
	p.listenAll(handlers)
	return p
}

func newParticipant(rt *Runtime) *Participant {
	p := &Participant{
		id:       uuid.NewString(),
		rt:       rt,
		handlers: make(map[string][]Handler),
	}
	rt.registry.add(p)
	return p
}

func (p *Participant) listenAll(handlers Handlers) {
	events := make([]string, 0, len(handlers))
	for event := range handlers {
		events = append(events, event)
	}
	sort.Strings(events)
	for _, event := range events {
		for _, h := range handlers[event] {
			p.Listen(event, h)
		}
	}
}

// ID returns the participant's unique ID.
func (p *Participant) ID() string {
	return p.id
}

// Handle returns a non-owning reference to p.
func (p *Participant) Handle() Handle {
	return Handle{id: p.id, registry: p.rt.registry}
}

// Listen subscribes p to event and appends h to its local handlers. The bus
// subscription is made once per event; further Listen calls only add
// handlers, and each handler runs once per broadcast.
func (p *Participant) Listen(event string, h Handler) {
	if p.destroyed || h == nil {
		return
	}
	handle := p.Handle()
	if !p.rt.bus.Subscribed(event, handle) {
		p.rt.bus.Subscribe(event, handle)
	}
	p.handlers[event] = append(p.handlers[event], h)
}

// Forget drops every local handler for event and unsubscribes from it.
func (p *Participant) Forget(event string) {
	delete(p.handlers, event)
	handle := p.Handle()
	for p.rt.bus.Unsubscribe(event, handle) {
	}
}

// Dispatch runs the local handlers for event in registration order. Events
// without handlers and destroyed participants are no-ops.
func (p *Participant) Dispatch(event string, args ...any) {
	if p.destroyed {
		return
	}
	handlers := p.handlers[event]
	if len(handlers) == 0 {
		return
	}
	snapshot := make([]Handler, len(handlers))
	copy(snapshot, handlers)
	for _, h := range snapshot {
		h(args...)
	}
}

// Events returns the events p has local handlers for, sorted.
func (p *Participant) Events() []string {
	events := make([]string, 0, len(p.handlers))
	for event := range p.handlers {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// Destroy forgets every event and removes p from the registry. Handles to
// p become no-ops.
func (p *Participant) Destroy() {
	if p.destroyed {
		return
	}
	for _, event := range p.Events() {
		p.Forget(event)
	}
	p.destroyed = true
	p.rt.registry.drop(p.id)
}

// Destroyed reports whether Destroy has been called.
func (p *Participant) Destroyed() bool {
	return p.destroyed
}
