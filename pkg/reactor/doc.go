// Package reactor implements template-backed components and the runtime
// they live in.
//
// # Runtime
//
// A Runtime owns one event bus and one registry. The registry is the arena
// that owns every participant created through the runtime; the bus and any
// synchronizer only hold Handles, which are looked up in the registry on
// use. Destroying a participant removes it from the registry, so stale
// handles turn into no-ops instead of dangling references.
//
// # Participants and Reactors
//
// A Participant only takes part in events: Listen, Forget, Dispatch.
// A Reactor adds a template, a property map and a live *html.Node tree:
//
//	rt := reactor.NewRuntime()
//	r, err := reactor.New(rt, reactor.Options{
//	    Template: "<div>{text}</div>",
//	    Props:    props.Props{"text": "Hello world!"},
//	})
//	r.Set(props.Props{"text": "Bye bye!"})  // reconciles in place
//	r.Element()                             // same *html.Node as before
//
// Template-less components are Participants, which have no render, set or
// element methods at all.
//
// # Fixed shape
//
// Reconciliation only rewrites text, attributes and styles; it never adds
// or removes nodes. A value that changes the tree's shape makes Render and
// Set fail with L030 and leaves the reactor unchanged. Two common causes:
// a value containing markup, and an empty value in a text-only position.
// "<p>{msg}</p>" with msg "" parses to an empty <p>, so a later non-empty
// msg has no text node to land in. Give such positions a non-empty
// initial value or surrounding text.
//
// Reactors are not safe for concurrent use. Handlers run synchronously on
// the goroutine that broadcast the event.
package reactor
