// Package lance provides the public API for building reactive HTML
// components.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/lance"
//
// Usage:
//
//	app := lance.New(lance.Config{})
//	badge, _ := app.Reactor(`<span class="badge">{count}</span>`,
//	    lance.Props{"count": 0},
//	    lance.Handlers{"inc": {func(args ...any) { ... }}})
//	app.Fire("inc", 1)
//
// Events reach every reactor listening on the app's bus. A Synchronizer
// keeps several reactors in step with one shared property map.
package lance

import (
	"github.com/vango-dev/lance/pkg/props"
	"github.com/vango-dev/lance/pkg/reactor"
	"github.com/vango-dev/lance/pkg/synchronizer"
)

// =============================================================================
// Core types
// =============================================================================

// Props is a reactor property map.
type Props = props.Props

// Handler is an event callback. It receives the broadcast arguments.
type Handler = reactor.Handler

// Handlers maps event names to ordered callbacks.
type Handlers = reactor.Handlers

// Reactor is a participant with a template and a live element.
type Reactor = reactor.Reactor

// Participant is a template-less reactor. It only takes part in events.
type Participant = reactor.Participant

// Factory is a reusable reactor blueprint.
type Factory = reactor.Factory

// Synchronizer propagates shared property changes to a group of reactors.
type Synchronizer = synchronizer.Synchronizer
