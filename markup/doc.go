// Package markup holds the syntax tree of a markup document.
//
// A [Tree] is an arena: nodes are stored once and referred to by [NodeID].
// Transforms rewrite the tree by replacing IDs in a parent's slots with
// [Tree.Replace], [Tree.SetValues] and [Tree.Wrap]. A node that is dropped
// from the tree is tombstoned with [Tree.Discard], after which [Tree.Node]
// returns nil for it.
//
// Documents are YAML encoded object trees, loaded with [Parse].
package markup
