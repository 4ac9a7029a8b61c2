// Package dom is the tree facility reactors render into.
//
// Trees are *html.Node values from golang.org/x/net/html. Parse turns an
// evaluated template into a detached single-root tree; the remaining helpers
// read and write the parts of a node that reconciliation touches: text,
// attributes and inline style properties.
package dom
