// Package tmpl evaluates reactor templates.
//
// A template is a string containing {name} placeholders. Evaluation replaces
// the first occurrence of each placeholder with the stringified property
// value and leaves everything else alone:
//
//	tmpl.Evaluate("<p>{greeting}, {name}</p>", props.Props{
//	    "greeting": "Hello",
//	    "name":     "world",
//	})
//	// <p>Hello, world</p>
//
// Only the first occurrence is replaced per evaluation. A template that
// repeats {name} keeps the second {name} verbatim.
//
// Properties are applied in sorted key order so evaluation is deterministic
// even when one value contains another key's placeholder.
package tmpl
