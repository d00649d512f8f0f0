package transform

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// PropertyPathResolver replaces the text of each setter's PropertyPath
// assignment with a [markup.PropertyPath] resolved against the nearest
// style target. A path that does not resolve keeps a nil Type.
type PropertyPathResolver struct{}

func (PropertyPathResolver) Name() string { return "property-path" }

func (PropertyPathResolver) Transform(c *Context, id markup.NodeID) (markup.NodeID, error) {
	obj := c.Object(id)
	if obj == nil || obj.Type != c.WellKnown.Setter {
		return id, nil
	}

	assign, a := c.Assignment(id, "PropertyPath")
	if a == nil || len(a.Values) != 1 {
		return id, nil
	}

	text := c.Text(a.Values[0])
	if text == nil {
		return id, nil
	}

	var owner *typesys.Type

	for _, s := range c.Tree.Scopes(id, markup.ScopeStyle) {
		owner = s.Target.Type

		break
	}

	path := resolvePath(c.Types, owner, text.Value)
	path.Position = text.Position

	if err := c.Tree.SetValues(assign, c.Tree.Add(path)); err != nil {
		return id, err
	}

	c.Logger.TraceContext(c, "resolved property path",
		slog.String("path", path.Source),
		slog.String("type", path.Type.String()),
	)

	return id, nil
}

// resolvePath walks the dotted path src starting at owner. Parenthesized
// segments "(Owner.Name)" name attached properties.
func resolvePath(types *typesys.Table, owner *typesys.Type, src string) *markup.PropertyPath {
	path := &markup.PropertyPath{Source: src}
	ok := true

	for _, raw := range splitTop(src, func(r rune) bool { return r == '.' }) {
		seg := markup.PathSegment{Name: raw}

		if inner, found := strings.CutPrefix(raw, "("); found {
			inner = strings.TrimSuffix(inner, ")")
			seg.Owner, seg.Name, _ = strings.Cut(inner, ".")
		}

		if ok {
			var (
				p   *typesys.Property
				err error
			)

			if seg.Owner != "" {
				p, err = types.LookupProperty(nil, seg.Owner+"."+seg.Name)
			} else {
				p, err = types.LookupProperty(owner, seg.Name)
			}

			if err != nil {
				ok = false
			} else {
				seg.Property = p
				owner = p.Type
			}
		}

		path.Segments = append(path.Segments, seg)
	}

	if ok && len(path.Segments) > 0 {
		path.Type = owner
	}

	return path
}
