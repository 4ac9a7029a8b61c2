// Package errors provides structured, coded errors for lance.
//
// Every error carries a short code (e.g. "L030") that maps to a registered
// message, a category, and a longer explanation. Call sites enrich the error
// with the context they know about: the tree path of a mismatched node, the
// template name that failed to load, or a suggestion for the caller.
//
// # Error Categories
//
//   - reactor: reactor construction and lifecycle misuse
//   - template: template evaluation and parsing
//   - reconcile: live/fresh tree shape mismatches
//   - source: template loading from directories or S3
//   - config: lance.json problems
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("L030").
//	    WithPath("div/ul[0]").
//	    WithDetail("live node has 3 children, fresh node has 4")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR L030: Reconcile shape mismatch
//	//
//	//   at div/ul[0]
//	//
//	//   live node has 3 children, fresh node has 4
//	//
//	//   Hint: Keep the template's element structure fixed; vary only text and attributes.
package errors
