package typesys

import (
	"log/slog"
	"strings"
)

// Names of the types the setter transform and emitter depend on.
const (
	StringName            = "String"
	SetterName            = "Setter"
	BindingName           = "IBinding"
	UnsetName             = "UnsetValueType"
	TemplateOfElementName = "ITemplate<Control>"
	StyleBaseName         = "StyleBase"
	StyleName             = "Style"
	ControlTemplateName   = "ControlTemplate"
)

// WellKnown holds the types with fixed roles in style compilation.
type WellKnown struct {
	Object            *Type
	String            *Type
	Setter            *Type
	Binding           *Type
	Unset             *Type
	TemplateOfElement *Type
	StyleBase         *Type
	Style             *Type
	ControlTemplate   *Type
}

// WellKnown resolves the well-known types, failing with
// [ErrWellKnownMissing] naming every type the table lacks.
func (t *Table) WellKnown() (WellKnown, error) {
	var missing []string

	get := func(name string) *Type {
		typ := t.Type(name)
		if typ == nil {
			missing = append(missing, name)
		}

		return typ
	}

	wk := WellKnown{
		Object:            get(ObjectName),
		String:            get(StringName),
		Setter:            get(SetterName),
		Binding:           get(BindingName),
		Unset:             get(UnsetName),
		TemplateOfElement: get(TemplateOfElementName),
		StyleBase:         get(StyleBaseName),
		Style:             get(StyleName),
		ControlTemplate:   get(ControlTemplateName),
	}

	if len(missing) > 0 {
		return WellKnown{}, ErrWellKnownMissing.With(
			slog.String("types", strings.Join(missing, ", ")),
		)
	}

	return wk, nil
}
