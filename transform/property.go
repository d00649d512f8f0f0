package transform

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stylec/markup"
)

// resolveProperty sets propType from the setter's Property assignment,
// replacing a property name with a resolved handle, or else from its
// already resolved PropertyPath.
func (s *setter) resolveProperty() error {
	assign, a := s.Assignment(s.id, "Property")
	if a == nil {
		return s.resolvePath()
	}

	for _, v := range a.Values {
		if h, ok := s.Tree.Node(v).(*markup.PropertyHandle); ok {
			s.propType = h.ValueType()

			return nil
		}
	}

	var text *markup.Text

	for _, v := range a.Values {
		if text = s.Text(v); text != nil {
			break
		}
	}

	if text == nil {
		return ErrInvalidPropertyValue.At(s.obj.Position)
	}

	name := strings.TrimSpace(text.Value)

	p, err := s.Properties.LookupProperty(s.target, name)
	if err != nil {
		e := ErrPropertyNotFound.At(text.Position).Wrap(err).
			Detail("%s has no property %q", s.target.Name, name).
			With(slog.String("target", s.target.Name), slog.String("property", name))

		if hint := s.Types.Suggest(s.target, name); len(hint) > 0 {
			e = e.With(slog.String("suggest", strings.Join(hint, ", ")))
		}

		return e
	}

	handle := s.Tree.Add(&markup.PropertyHandle{Position: text.Position, Property: p})
	if err := s.Tree.SetValues(assign, handle); err != nil {
		return err
	}

	s.propType = p.Type

	s.Logger.TraceContext(s, "resolved setter property",
		slog.String("property", p.String()),
		slog.String("type", p.Type.String()),
	)

	return nil
}

func (s *setter) resolvePath() error {
	_, a := s.Assignment(s.id, "PropertyPath")
	if a == nil {
		return ErrMissingPropertyOrPath.At(s.obj.Position)
	}

	if len(a.Values) > 0 {
		if path, ok := s.Tree.Node(a.Values[0]).(*markup.PropertyPath); ok && path.Type != nil {
			s.propType = path.Type

			return nil
		}
	}

	return ErrPropertyPathUnresolved.At(s.obj.Position)
}
