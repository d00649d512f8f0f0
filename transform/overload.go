package transform

import (
	"github.com/ardnew/stylec/typesys"
)

// synthesize builds the Value property a resolved setter assigns through.
// Its overloads are tried in order: binding, unset, then propType itself.
func (s *setter) synthesize() *typesys.Property {
	return SetterValueProperty(s.obj.Type, s.propType, s.WellKnown)
}

// SetterValueProperty returns the Value property of setterType specialized
// to values of propType. The accessors are those the type table declares
// for setterType's own Value property, if any.
func SetterValueProperty(setterType, propType *typesys.Type, wk typesys.WellKnown) *typesys.Property {
	get := typesys.Accessor{Owner: setterType.Name, Name: "get_Value"}
	set := typesys.Accessor{Owner: setterType.Name, Name: "set_Value"}

	if p, ok := setterType.Property("Value"); ok {
		if !p.Getter.IsZero() {
			get = p.Getter
		}

		if len(p.Setters) > 0 {
			set = p.Setters[0].Accessor
		}
	}

	return &typesys.Property{
		Name:          "Value",
		DeclaringType: setterType,
		Type:          propType,
		Getter:        get,
		Setters: []typesys.Setter{
			{Kind: typesys.DeferredBinding, Accessor: set, Accepts: wk.Binding},
			{Kind: typesys.UnsetSentinel, Accessor: set, Accepts: wk.Unset},
			{
				Kind:      typesys.DirectAssignment,
				Accessor:  set,
				Accepts:   propType,
				AllowNull: propType.AcceptsNull(),
			},
		},
		Synthesized: true,
	}
}
