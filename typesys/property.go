package typesys

import (
	"strconv"
	"strings"
)

// Accessor identifies a method on a type used to read or write a property.
type Accessor struct {
	Owner string
	Name  string
}

func (a Accessor) String() string { return a.Owner + "::" + a.Name }

// IsZero reports whether a is the zero Accessor.
func (a Accessor) IsZero() bool { return a == Accessor{} }

// SetterKind selects the assignment strategy of a [Setter] overload.
type SetterKind int

const (
	// DirectAssignment stores a value of the accepted type.
	DirectAssignment SetterKind = iota
	// DeferredBinding stores a binding resolved by a later stage.
	DeferredBinding
	// UnsetSentinel stores the explicit "no value" marker.
	UnsetSentinel
)

func (k SetterKind) String() string {
	switch k {
	case DirectAssignment:
		return "direct"
	case DeferredBinding:
		return "binding"
	case UnsetSentinel:
		return "unset"
	default:
		return "SetterKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Setter is one overload of a property's setter. Overloads of a property are
// ordered; the first applicable one is used.
type Setter struct {
	Kind      SetterKind
	Accessor  Accessor
	Accepts   *Type
	AllowNull bool
}

// Box reports whether a value must be boxed before calling the accessor.
func (s Setter) Box() bool { return s.Accepts.IsValueType() }

// Applicable reports whether a value of type value, or null when null is set,
// can be passed to this overload.
func (s Setter) Applicable(value *Type, null bool) bool {
	if null {
		return s.AllowNull
	}

	return s.Accepts.IsAssignableFrom(value)
}

// SetterKey is the identity of a [Setter] overload.
type SetterKey struct {
	Accessor Accessor
	Accepts  string
}

// Key returns the (accessor, accepted type) identity of s.
func (s Setter) Key() SetterKey {
	return SetterKey{Accessor: s.Accessor, Accepts: s.Accepts.String()}
}

// Equal reports whether s and o call the same accessor with the same
// accepted type.
func (s Setter) Equal(o Setter) bool { return s.Key() == o.Key() }

func (s Setter) String() string {
	var b strings.Builder

	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	b.WriteString(s.Accessor.String())
	b.WriteByte('(')
	b.WriteString(s.Accepts.String())

	if s.AllowNull {
		b.WriteByte('?')
	}

	b.WriteByte(')')

	return b.String()
}

// Property describes a property a markup object can assign.
type Property struct {
	Name          string
	DeclaringType *Type
	Type          *Type
	Getter        Accessor
	Setters       []Setter
	// Attached properties are declared on one type and set on another.
	Attached bool
	// Synthesized properties are built by a transform, not a type table.
	Synthesized bool
}

// QualifiedName returns "Owner.Name".
func (p *Property) QualifiedName() string {
	if p == nil {
		return "<unresolved>"
	}

	return p.DeclaringType.String() + "." + p.Name
}

func (p *Property) String() string {
	if p == nil {
		return "<unresolved>"
	}

	if p.Attached {
		return "(" + p.QualifiedName() + ")"
	}

	return p.QualifiedName()
}

// newProperty builds a table-declared property with a single direct setter.
func newProperty(owner *Type, name string, typ *Type, attached, readOnly bool) *Property {
	get, set := "get_"+name, "set_"+name
	if attached {
		get, set = "Get"+name, "Set"+name
	}

	p := &Property{
		Name:     name,
		Type:     typ,
		Getter:   Accessor{Owner: owner.Name, Name: get},
		Attached: attached,
	}

	if !readOnly {
		p.Setters = []Setter{{
			Kind:      DirectAssignment,
			Accessor:  Accessor{Owner: owner.Name, Name: set},
			Accepts:   typ,
			AllowNull: typ.AcceptsNull(),
		}}
	}

	return p
}
