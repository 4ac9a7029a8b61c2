package reactor

import (
	"time"

	"golang.org/x/net/html"

	"github.com/vango-dev/lance/internal/errors"
	"github.com/vango-dev/lance/pkg/dom"
	"github.com/vango-dev/lance/pkg/props"
	"github.com/vango-dev/lance/pkg/reconcile"
	"github.com/vango-dev/lance/pkg/tmpl"
)

// Options configures a Reactor.
type Options struct {
	// Template is the markup with {name} placeholders. Required.
	Template string

	// Props are the initial properties. They are deep-copied; when set, the
	// reactor renders immediately.
	Props props.Props

	// Handlers are wired through Listen in sorted event order.
	Handlers Handlers

	// Escape HTML-escapes property values during evaluation.
	Escape bool
}

// Reactor is a participant with a template, properties and a live tree.
type Reactor struct {
	*Participant

	template string
	eval     tmpl.Evaluator
	props    props.Props
	elem     *html.Node
}

// New creates a reactor. It fails with L010 when no template is given and
// with the render error when the initial render fails.
func New(rt *Runtime, opts Options) (*Reactor, error) {
	if opts.Template == "" {
		return nil, errors.New("L010")
	}

	r := &Reactor{
		Participant: newParticipant(rt),
		template:    opts.Template,
		eval:        tmpl.Evaluator{Escape: opts.Escape},
	}
	r.view = r

	if opts.Props != nil {
		r.props = opts.Props.Clone()
		if _, err := r.Render(r.props); err != nil {
			r.Participant.Destroy()
			return nil, err
		}
	}

	r.listenAll(opts.Handlers)
	return r, nil
}

// Render evaluates the template against p. The first render adopts the new
// tree; later renders reconcile it onto the live tree and return the live
// tree. Stored properties are not modified.
func (r *Reactor) Render(p props.Props) (*html.Node, error) {
	start := time.Now()
	m := r.rt.metrics

	fresh, err := dom.Parse(r.eval.Evaluate(r.template, p))
	if err != nil {
		m.Render("error", time.Since(start))
		return nil, err
	}

	if r.elem == nil {
		r.elem = fresh
		m.Render("initial", time.Since(start))
		return r.elem, nil
	}

	changes, err := reconcile.Reconcile(r.elem, fresh)
	if err != nil {
		m.Render("error", time.Since(start))
		r.rt.logger.Warn("reconcile failed", "reactor", r.id, "error", err)
		return nil, err
	}
	for _, c := range changes {
		m.Change(c.Op.String())
	}
	m.Render("reconciled", time.Since(start))
	if len(changes) > 0 {
		r.rt.logger.Debug("reactor reconciled", "reactor", r.id, "changes", len(changes))
	}
	return r.elem, nil
}

// Set merges partial into the stored properties, re-renders if a live tree
// exists, and returns a copy of the updated properties. When the render
// fails the stored properties are left as they were.
func (r *Reactor) Set(partial props.Props) (props.Props, error) {
	next := r.props.Clone()
	if next == nil {
		next = make(props.Props, len(partial))
	}
	next.Merge(partial)
	if r.elem != nil {
		if _, err := r.Render(next); err != nil {
			return r.props.Clone(), err
		}
	}
	r.props = next
	return r.props.Clone(), nil
}

// Remove detaches and discards the live tree. Element returns nil afterwards.
func (r *Reactor) Remove() {
	if r.elem == nil {
		return
	}
	dom.Detach(r.elem)
	r.elem = nil
}

// MountTo appends the live tree to parent, detaching it from any previous
// parent first.
func (r *Reactor) MountTo(parent *html.Node) error {
	if r.elem == nil {
		return errors.New("L011").WithPath(r.id)
	}
	dom.Detach(r.elem)
	parent.AppendChild(r.elem)
	return nil
}

// Element returns the live tree, or nil when nothing is rendered.
func (r *Reactor) Element() *html.Node {
	return r.elem
}

// HTML returns the live tree serialized as HTML, or "" when nothing is
// rendered.
func (r *Reactor) HTML() string {
	return dom.Render(r.elem)
}

// Props returns a copy of the stored properties. It is nil until a template
// reactor receives properties.
func (r *Reactor) Props() props.Props {
	return r.props.Clone()
}

// Template returns the reactor's template.
func (r *Reactor) Template() string {
	return r.template
}

// Destroy removes the live tree, forgets every event and drops the reactor
// from the registry.
func (r *Reactor) Destroy() {
	r.Remove()
	r.Participant.Destroy()
}
