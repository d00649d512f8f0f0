package markup

import (
	"slices"
	"strconv"

	"github.com/ardnew/stylec/typesys"
)

// NodeID addresses a node in a [Tree].
type NodeID int

// None is the NodeID of no node.
const None NodeID = -1

// Position is a 1-based location in a source document.
type Position struct {
	Line   int
	Column int
}

// Pos returns p. Embedding Position gives every node a Pos method.
func (p Position) Pos() Position { return p }

// IsValid reports whether p refers to a source location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Kind identifies the concrete type of a [Node].
type Kind int

const (
	KindObject Kind = iota
	KindAssignment
	KindText
	KindScope
	KindPropertyHandle
	KindPropertyPath
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindAssignment:
		return "assignment"
	case KindText:
		return "text"
	case KindScope:
		return "scope"
	case KindPropertyHandle:
		return "property"
	case KindPropertyPath:
		return "path"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is an element of a [Tree].
type Node interface {
	Kind() Kind
	Pos() Position

	slots() []*NodeID
	clone() Node
}

// Directive is an "x:" prefixed compiler directive attached to an object.
type Directive struct {
	Position
	Name  string
	Value string
}

// Object instantiates a type. Its children are assignments, nested objects,
// scopes and bare text, in document order.
type Object struct {
	Position
	TypeName   string
	Type       *typesys.Type
	Directives []Directive
	Children   []NodeID
}

func (*Object) Kind() Kind { return KindObject }

// Directive returns the value of the directive named name.
func (o *Object) Directive(name string) (string, bool) {
	for _, d := range o.Directives {
		if d.Name == name {
			return d.Value, true
		}
	}

	return "", false
}

func (o *Object) slots() []*NodeID { return refs(o.Children) }

func (o *Object) clone() Node {
	c := *o
	c.Directives = slices.Clone(o.Directives)
	c.Children = slices.Clone(o.Children)

	return &c
}

// Assignment sets a property of its parent object to one or more values.
type Assignment struct {
	Position
	// Name is the property name as written.
	Name     string
	Property *typesys.Property
	Values   []NodeID
}

func (*Assignment) Kind() Kind { return KindAssignment }

// PropertyName returns the resolved property name, or the written name.
func (a *Assignment) PropertyName() string {
	if a.Property != nil {
		return a.Property.Name
	}

	return a.Name
}

func (a *Assignment) slots() []*NodeID { return refs(a.Values) }

func (a *Assignment) clone() Node {
	c := *a
	c.Values = slices.Clone(a.Values)

	return &c
}

// Text is literal source text.
type Text struct {
	Position
	Value string
}

func (*Text) Kind() Kind { return KindText }
func (*Text) slots() []*NodeID { return nil }

func (t *Text) clone() Node {
	c := *t

	return &c
}

// ScopeTag tells what kind of construct a [TargetTypeScope] applies to.
type ScopeTag int

const (
	ScopeStyle ScopeTag = iota
	ScopeControlTemplate
)

func (s ScopeTag) String() string {
	switch s {
	case ScopeStyle:
		return "style"
	case ScopeControlTemplate:
		return "control-template"
	default:
		return "ScopeTag(" + strconv.Itoa(int(s)) + ")"
	}
}

// TypeRef is a type reference that may fail to resolve.
type TypeRef struct {
	Name string
	Type *typesys.Type
}

func (r TypeRef) String() string {
	if r.Type != nil {
		return r.Type.Name
	}

	if r.Name != "" {
		return r.Name + "?"
	}

	return "?"
}

// TargetTypeScope wraps a value with the element type that the settings
// beneath it apply to.
type TargetTypeScope struct {
	Position
	Value  NodeID
	Target TypeRef
	Scope  ScopeTag
}

func (*TargetTypeScope) Kind() Kind { return KindScope }
func (s *TargetTypeScope) slots() []*NodeID { return []*NodeID{&s.Value} }

func (s *TargetTypeScope) clone() Node {
	c := *s

	return &c
}

// PropertyHandle is a resolved reference to a single named property.
type PropertyHandle struct {
	Position
	Property *typesys.Property
}

func (*PropertyHandle) Kind() Kind { return KindPropertyHandle }
func (*PropertyHandle) slots() []*NodeID { return nil }

func (h *PropertyHandle) clone() Node {
	c := *h

	return &c
}

// ValueType returns the type of the referenced property's value.
func (h *PropertyHandle) ValueType() *typesys.Type {
	if h.Property == nil {
		return nil
	}

	return h.Property.Type
}

// PathSegment is one step of a [PropertyPath].
type PathSegment struct {
	// Owner is set for attached segments written as "(Owner.Name)".
	Owner    string
	Name     string
	Property *typesys.Property
}

func (s PathSegment) String() string {
	if s.Owner != "" {
		return "(" + s.Owner + "." + s.Name + ")"
	}

	return s.Name
}

// PropertyPath is a chain of property references. Type is the value type
// of the last segment, or nil when the chain did not resolve.
type PropertyPath struct {
	Position
	Source   string
	Segments []PathSegment
	Type     *typesys.Type
}

func (*PropertyPath) Kind() Kind { return KindPropertyPath }
func (*PropertyPath) slots() []*NodeID { return nil }

func (p *PropertyPath) clone() Node {
	c := *p
	c.Segments = slices.Clone(p.Segments)

	return &c
}

func refs(ids []NodeID) []*NodeID {
	out := make([]*NodeID, len(ids))
	for i := range ids {
		out[i] = &ids[i]
	}

	return out
}
