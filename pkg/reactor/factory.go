package reactor

import "github.com/vango-dev/lance/pkg/props"

// Factory is a reusable reactor blueprint. Each reactor it builds gets its
// own copy of the blueprint properties.
type Factory struct {
	rt   *Runtime
	opts Options
}

// NewFactory captures opts as a blueprint. opts.Props is deep-copied.
func NewFactory(rt *Runtime, opts Options) *Factory {
	opts.Props = opts.Props.Clone()
	return &Factory{rt: rt, opts: opts}
}

// New builds a reactor from the blueprint.
func (f *Factory) New() (*Reactor, error) {
	opts := f.opts
	opts.Props = f.opts.Props.Clone()
	return New(f.rt, opts)
}

// NewWith builds a reactor whose initial properties are the blueprint's
// overlaid with overrides.
func (f *Factory) NewWith(overrides props.Props) (*Reactor, error) {
	opts := f.opts
	p := f.opts.Props.Clone()
	if p == nil {
		p = make(props.Props, len(overrides))
	}
	p.Merge(overrides)
	opts.Props = p
	return New(f.rt, opts)
}

// NewParticipant builds a template-less participant with the blueprint's
// handlers.
func (f *Factory) NewParticipant() *Participant {
	return NewParticipant(f.rt, f.opts.Handlers)
}
