package transform

import (
	"log/slog"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// SetterTransformer resolves style setters into typed property
// assignments. Each setter gets its target type from the nearest style
// scope, its property from either a Property name or a PropertyPath, and,
// when its literal value converts statically, a synthesized Value property
// with binding, unset and direct overloads.
type SetterTransformer struct{}

func (SetterTransformer) Name() string { return "setter" }

func (SetterTransformer) Transform(c *Context, id markup.NodeID) (markup.NodeID, error) {
	obj := c.Object(id)
	if obj == nil || obj.Type == nil || obj.Type != c.WellKnown.Setter {
		return id, nil
	}

	s := &setter{Context: c, id: id, obj: obj}

	steps := []func() error{
		s.resolveTarget,
		s.resolveProperty,
		s.resolveValue,
		s.propagateTemplate,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return id, err
		}
	}

	c.Logger.DebugContext(c, "resolved setter",
		slog.String("pos", obj.Position.String()),
		slog.String("target", s.target.Name),
		slog.String("type", s.propType.String()),
	)

	return id, nil
}

// setter holds the state built up while resolving one setter node.
type setter struct {
	*Context

	id  markup.NodeID
	obj *markup.Object

	target   *typesys.Type
	propType *typesys.Type
}

// resolveTarget takes the target type from the nearest style scope.
func (s *setter) resolveTarget() error {
	for _, scope := range s.Tree.Scopes(s.id, markup.ScopeStyle) {
		if scope.Target.Type == nil {
			return ErrTargetTypeUnresolved.At(s.obj.Position).
				Detail("cannot find parent style selector or control template "+
					"target type %q; if the setter is not part of a style, set an "+
					"%s directive on its parent", scope.Target.Name, DirectiveSetterTargetType).
				With(slog.String("target", scope.Target.Name))
		}

		s.target = scope.Target.Type

		return nil
	}

	return ErrTargetTypeUnresolved.At(s.obj.Position).
		Detail("setter is not inside a style; set an %s directive on its parent",
			DirectiveSetterTargetType)
}
