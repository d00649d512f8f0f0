package markup

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/ardnew/stylec/typesys"
)

// Tree is an arena of nodes addressed by [NodeID]. Nodes are never moved;
// a node removed from the tree is tombstoned so that [Tree.Node] returns nil
// for it and no later stage can reach it.
type Tree struct {
	// Name identifies the document, usually its file path.
	Name string
	// Source is the document text, kept for error snippets.
	Source []byte
	// Types is the table the tree's type and property references point
	// into, or nil for trees built by hand.
	Types *typesys.Table
	Root  NodeID

	nodes  []Node
	parent []NodeID
}

// NewTree returns an empty tree.
func NewTree(name string, source []byte) *Tree {
	return &Tree{Name: name, Source: source, Root: None}
}

// Add stores n and returns its ID. Every child n refers to is reparented
// to the new node.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.nodes))

	t.nodes = append(t.nodes, n)
	t.parent = append(t.parent, None)

	for _, ref := range n.slots() {
		if t.valid(*ref) {
			t.parent[*ref] = id
		}
	}

	return id
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id] != nil
}

// Node returns the node with the given ID, or nil if id is out of range or
// was discarded.
func (t *Tree) Node(id NodeID) Node {
	if !t.valid(id) {
		return nil
	}

	return t.nodes[id]
}

// Parent returns the parent of id, or [None] for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return None
	}

	return t.parent[id]
}

// Children returns a copy of the child IDs of id in order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}

	refs := n.slots()
	out := make([]NodeID, len(refs))

	for i, ref := range refs {
		out[i] = *ref
	}

	return out
}

// Len returns the number of live nodes.
func (t *Tree) Len() int {
	count := 0

	for _, n := range t.nodes {
		if n != nil {
			count++
		}
	}

	return count
}

// Ancestors iterates the ancestors of id, nearest first.
func (t *Tree) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for p := t.Parent(id); p != None; p = t.Parent(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// AncestorsOf iterates the ancestors of id of node type T, nearest first.
func AncestorsOf[T Node](t *Tree, id NodeID) iter.Seq2[NodeID, T] {
	return func(yield func(NodeID, T) bool) {
		for p := range t.Ancestors(id) {
			if n, ok := t.Node(p).(T); ok {
				if !yield(p, n) {
					return
				}
			}
		}
	}
}

// Scopes iterates the [TargetTypeScope] ancestors of id tagged tag, nearest
// first.
func (t *Tree) Scopes(id NodeID, tag ScopeTag) iter.Seq2[NodeID, *TargetTypeScope] {
	return func(yield func(NodeID, *TargetTypeScope) bool) {
		for p, s := range AncestorsOf[*TargetTypeScope](t, id) {
			if s.Scope == tag && !yield(p, s) {
				return
			}
		}
	}
}

// Replace puts replacement in the slot of parent that holds old. With
// parent [None], old must be the root. The old node stays in the arena,
// detached; call [Tree.Discard] when nothing refers to it any more.
func (t *Tree) Replace(parent, old, replacement NodeID) error {
	if !t.valid(replacement) {
		return ErrInvalidNode.With(slog.Int("node", int(replacement)))
	}

	if parent == None {
		if t.Root != old {
			return ErrNotChild.With(slog.Int("node", int(old)))
		}

		t.Root = replacement
	} else {
		n := t.Node(parent)
		if n == nil {
			return ErrInvalidNode.With(slog.Int("node", int(parent)))
		}

		i := slices.IndexFunc(n.slots(), func(ref *NodeID) bool { return *ref == old })
		if i < 0 {
			return ErrNotChild.With(
				slog.Int("node", int(old)),
				slog.Int("parent", int(parent)),
			)
		}

		*n.slots()[i] = replacement
	}

	t.parent[replacement] = parent

	if t.valid(old) && t.parent[old] == parent {
		t.parent[old] = None
	}

	return nil
}

// SetValues replaces the values of the assignment id. Previous values that
// are not kept are discarded.
func (t *Tree) SetValues(id NodeID, values ...NodeID) error {
	a, ok := t.Node(id).(*Assignment)
	if !ok {
		return ErrInvalidNode.With(slog.Int("node", int(id)))
	}

	for _, v := range values {
		if !t.valid(v) {
			return ErrInvalidNode.With(slog.Int("node", int(v)))
		}
	}

	dropped := slices.DeleteFunc(slices.Clone(a.Values), func(v NodeID) bool {
		return slices.Contains(values, v)
	})

	a.Values = slices.Clone(values)

	for _, v := range values {
		t.parent[v] = id
	}

	for _, v := range dropped {
		if t.Parent(v) == id {
			t.Discard(v)
		}
	}

	return nil
}

// Wrap replaces child in its parent's slot with a new [TargetTypeScope]
// holding child, and returns the scope's ID.
func (t *Tree) Wrap(child NodeID, tag ScopeTag, target TypeRef) (NodeID, error) {
	n := t.Node(child)
	if n == nil {
		return None, ErrInvalidNode.With(slog.Int("node", int(child)))
	}

	parent := t.Parent(child)
	if parent == None && t.Root != child {
		return None, ErrNotChild.With(slog.Int("node", int(child)))
	}

	scope := t.Add(&TargetTypeScope{
		Position: n.Pos(),
		Value:    None,
		Target:   target,
		Scope:    tag,
	})

	if err := t.Replace(parent, child, scope); err != nil {
		return None, err
	}

	t.Node(scope).(*TargetTypeScope).Value = child
	t.parent[child] = scope

	return scope, nil
}

// Discard tombstones id and every descendant still parented to it.
func (t *Tree) Discard(id NodeID) {
	if t.Node(id) == nil {
		return
	}

	for _, c := range t.Children(id) {
		if t.Parent(c) == id {
			t.Discard(c)
		}
	}

	t.detach(id)

	t.nodes[id] = nil
	t.parent[id] = None

	if t.Root == id {
		t.Root = None
	}
}

// detach removes id from the slots of its parent.
func (t *Tree) detach(id NodeID) {
	switch p := t.Node(t.parent[id]).(type) {
	case *Object:
		p.Children = slices.DeleteFunc(p.Children, func(c NodeID) bool { return c == id })
	case *Assignment:
		p.Values = slices.DeleteFunc(p.Values, func(c NodeID) bool { return c == id })
	case *TargetTypeScope:
		if p.Value == id {
			p.Value = None
		}
	}
}

// Walk calls fn for each node reachable from the root in pre-order, with
// the node's depth. Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	var walk func(NodeID, int)

	walk = func(id NodeID, depth int) {
		if t.Node(id) == nil || !fn(id, depth) {
			return
		}

		for _, c := range t.Children(id) {
			walk(c, depth+1)
		}
	}

	walk(t.Root, 0)
}

// Clone returns a deep copy of t. Types and properties are shared.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Name:   t.Name,
		Source: t.Source,
		Types:  t.Types,
		Root:   t.Root,
		nodes:  make([]Node, len(t.nodes)),
		parent: slices.Clone(t.parent),
	}

	for i, n := range t.nodes {
		if n != nil {
			c.nodes[i] = n.clone()
		}
	}

	return c
}

// Validate checks the structural invariants of t: every slot reachable from
// the root refers to a live node whose parent is the node holding the slot,
// and no node is reachable twice.
func (t *Tree) Validate() error {
	if t.Root == None {
		return nil
	}

	if t.Node(t.Root) == nil {
		return ErrInvalidNode.With(slog.String("at", "root"))
	}

	seen := make(map[NodeID]bool, len(t.nodes))

	var check func(NodeID) error

	check = func(id NodeID) error {
		if seen[id] {
			return ErrSharedNode.With(slog.Int("node", int(id)))
		}

		seen[id] = true

		for _, c := range t.Children(id) {
			if t.Node(c) == nil {
				return ErrInvalidNode.With(
					slog.Int("node", int(c)),
					slog.Int("parent", int(id)),
				)
			}

			if t.parent[c] != id {
				return ErrParentMismatch.With(
					slog.Int("node", int(c)),
					slog.Int("parent", int(id)),
					slog.Int("recorded", int(t.parent[c])),
				)
			}

			if err := check(c); err != nil {
				return err
			}
		}

		return nil
	}

	return check(t.Root)
}
