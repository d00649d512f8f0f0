package typesys

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Kind classifies how values of a type are stored.
type Kind int

const (
	KindReference Kind = iota
	KindValue
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindValue:
		return "value"
	case KindInterface:
		return "interface"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseKind parses the name of a [Kind]. The empty string is
// [KindReference].
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reference", "class":
		return KindReference, nil
	case "value", "struct":
		return KindValue, nil
	case "interface":
		return KindInterface, nil
	default:
		return 0, ErrInvalidKind.With(
			slog.String("kind", s),
		)
	}
}

// Type is a named type that markup may instantiate or assign.
type Type struct {
	Name       string
	Kind       Kind
	Base       *Type
	Interfaces []*Type
	// Nullable marks a value type that also accepts null.
	Nullable bool
	// Converter names the static converter used for literal text.
	// Empty means the type only accepts text if it is assignable from String.
	Converter string
	Enum      []string
	// Constraint is an expression that must hold for a converted literal.
	Constraint string

	props map[string]*Property
	order []string
}

func (t *Type) String() string {
	if t == nil {
		return "<unresolved>"
	}

	return t.Name
}

// IsValueType reports whether values of t are stored unboxed.
func (t *Type) IsValueType() bool { return t != nil && t.Kind == KindValue }

// IsInterface reports whether t is an interface type.
func (t *Type) IsInterface() bool { return t != nil && t.Kind == KindInterface }

// AcceptsNull reports whether null is a valid value of t.
func (t *Type) AcceptsNull() bool {
	return t != nil && (t.Kind != KindValue || t.Nullable)
}

// IsAssignableFrom reports whether a value of type from can be stored in a
// location of type t: from is t, derives from t, or implements t.
func (t *Type) IsAssignableFrom(from *Type) bool {
	if t == nil || from == nil {
		return false
	}

	seen := map[*Type]bool{}

	var walk func(*Type) bool

	walk = func(c *Type) bool {
		for ; c != nil && !seen[c]; c = c.Base {
			seen[c] = true

			if c == t {
				return true
			}

			for _, i := range c.Interfaces {
				if walk(i) {
					return true
				}
			}
		}

		return false
	}

	return walk(from)
}

// Property returns the property named name declared directly on t.
func (t *Type) Property(name string) (*Property, bool) {
	if t == nil {
		return nil, false
	}

	p, ok := t.props[name]

	return p, ok
}

// Properties iterates the properties declared directly on t, in declaration
// order.
func (t *Type) Properties() iter.Seq[*Property] {
	return func(yield func(*Property) bool) {
		if t == nil {
			return
		}

		for _, name := range t.order {
			if !yield(t.props[name]) {
				return
			}
		}
	}
}

// Lineage iterates t followed by each of its base types.
func (t *Type) Lineage() iter.Seq[*Type] {
	return func(yield func(*Type) bool) {
		seen := map[*Type]bool{}

		for c := t; c != nil && !seen[c]; c = c.Base {
			seen[c] = true

			if !yield(c) {
				return
			}
		}
	}
}

func (t *Type) declare(p *Property) error {
	if t.props == nil {
		t.props = map[string]*Property{}
	}

	if _, dup := t.props[p.Name]; dup {
		return ErrDuplicateProperty.With(
			slog.String("type", t.Name),
			slog.String("property", p.Name),
		)
	}

	p.DeclaringType = t
	t.props[p.Name] = p
	t.order = append(t.order, p.Name)

	return nil
}
