// Package reconcile copies content from a freshly rendered tree onto a live
// tree without replacing any live node.
//
// Both trees must come from the same template shape: the same node types,
// tags and child counts at every level. Reconcile verifies this before it
// touches anything, so a mismatch leaves the live tree exactly as it was.
// Within that shape it updates:
//
//   - text and comment data
//   - attributes, compared pairwise by position
//   - inline style properties present on both sides
//
// Live nodes keep their identity, so references held elsewhere remain valid.
// The returned Change list records every write, in tree order.
package reconcile
