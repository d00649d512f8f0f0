package transform

import (
	"log/slog"

	"github.com/ardnew/stylec/markup"
)

// propagateTemplate gives a template nested directly in a setter the
// setter's target type, so it expands against the element the style
// applies to. This assumes the style is only ever applied to elements of
// that type.
func (s *setter) propagateTemplate() error {
	tmpl := s.WellKnown.TemplateOfElement
	if tmpl.IsAssignableFrom(s.propType) {
		return nil
	}

	match, count := markup.None, 0

	for _, child := range s.Tree.Children(s.id) {
		if obj := s.Object(child); obj != nil && obj.Type != nil && tmpl.IsAssignableFrom(obj.Type) {
			match = child
			count++
		}
	}

	if count != 1 {
		return nil
	}

	scope, err := s.Tree.Wrap(match, markup.ScopeControlTemplate,
		markup.TypeRef{Name: s.target.Name, Type: s.target})
	if err != nil {
		return err
	}

	s.Logger.TraceContext(s, "scoped setter template",
		slog.Int("scope", int(scope)),
		slog.String("target", s.target.Name),
	)

	return nil
}
