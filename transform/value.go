package transform

import (
	"log/slog"

	"github.com/ardnew/stylec/markup"
)

// resolveValue statically converts the setter's literal value to propType.
// A literal inside an explicit Value assignment must convert. A bare
// literal that does not convert is left for runtime binding.
func (s *setter) resolveValue() error {
	assign, textID, done := s.literal()
	if done || textID == markup.None {
		return nil
	}

	text := s.Text(textID)

	if _, err := s.Coercer.Coerce(text.Value, s.propType); err != nil {
		if assign != markup.None {
			return ErrValueConversion.At(text.Position).Wrap(err).
				Detail("%q to %s", text.Value, s.propType).
				With(slog.String("type", s.propType.String()))
		}

		s.Logger.DebugContext(s, "deferring setter value to runtime binding",
			slog.String("pos", text.Position.String()),
			slog.String("text", text.Value),
			slog.String("type", s.propType.String()),
		)

		return nil
	}

	prop := s.synthesize()

	if assign != markup.None {
		s.Tree.Node(assign).(*markup.Assignment).Property = prop

		return nil
	}

	wrapper := s.Tree.Add(&markup.Assignment{
		Position: text.Position,
		Name:     prop.Name,
		Property: prop,
	})

	if err := s.Tree.Replace(s.id, textID, wrapper); err != nil {
		return err
	}

	return s.Tree.SetValues(wrapper, textID)
}

// literal finds the text to convert: the single text value of a Value
// assignment, else the first bare text child. done is set when a Value
// assignment already carries a synthesized property.
func (s *setter) literal() (assign, text markup.NodeID, done bool) {
	assign, text = markup.None, markup.None

	for _, child := range s.Tree.Children(s.id) {
		a, ok := s.Tree.Node(child).(*markup.Assignment)
		if !ok || a.PropertyName() != "Value" {
			continue
		}

		if a.Property != nil && a.Property.Synthesized {
			return markup.None, markup.None, true
		}

		if assign == markup.None && len(a.Values) == 1 && s.Text(a.Values[0]) != nil {
			assign, text = child, a.Values[0]
		}
	}

	if assign != markup.None {
		return assign, text, false
	}

	for _, child := range s.Tree.Children(s.id) {
		if s.Text(child) != nil {
			return markup.None, child, false
		}
	}

	return markup.None, markup.None, false
}
