package transform

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// DirectiveSetterTargetType names the directive that gives setters outside
// any style a target type.
const DirectiveSetterTargetType = markup.DirectivePrefix + "SetterTargetType"

// TargetTypeMetadata wraps styles, control themes, control templates and
// objects carrying an x:SetterTargetType directive in a
// [markup.TargetTypeScope] naming the element type they apply to.
type TargetTypeMetadata struct{}

func (TargetTypeMetadata) Name() string { return "target-type" }

func (TargetTypeMetadata) Transform(c *Context, id markup.NodeID) (markup.NodeID, error) {
	obj := c.Object(id)
	if obj == nil || obj.Type == nil {
		return id, nil
	}

	if s, ok := c.Tree.Node(c.Tree.Parent(id)).(*markup.TargetTypeScope); ok && s.Value == id {
		return id, nil
	}

	var (
		tag  markup.ScopeTag
		name string
	)

	if v, ok := obj.Directive(DirectiveSetterTargetType); ok {
		tag, name = markup.ScopeStyle, typeLiteral(v)
	} else {
		switch {
		case c.WellKnown.StyleBase.IsAssignableFrom(obj.Type):
			tag = markup.ScopeStyle

			if text, ok := textValue(c, id, "TargetType"); ok {
				name = typeLiteral(text)
			} else if text, ok := textValue(c, id, "Selector"); ok {
				name = selectorTarget(c, id, text)
			}
		case c.WellKnown.ControlTemplate.IsAssignableFrom(obj.Type):
			text, ok := textValue(c, id, "TargetType")
			if !ok {
				return id, nil
			}

			tag, name = markup.ScopeControlTemplate, typeLiteral(text)
		default:
			return id, nil
		}
	}

	ref := markup.TypeRef{Name: name, Type: c.Types.Type(name)}

	scope, err := c.Tree.Wrap(id, tag, ref)
	if err != nil {
		return id, err
	}

	c.Logger.TraceContext(c, "scoped target type",
		slog.String("object", obj.TypeName),
		slog.String("scope", tag.String()),
		slog.String("target", ref.String()),
	)

	return scope, nil
}

// textValue returns the single text value assigned to property name on
// object id.
func textValue(c *Context, id markup.NodeID, name string) (string, bool) {
	_, a := c.Assignment(id, name)
	if a == nil || len(a.Values) != 1 {
		return "", false
	}

	t := c.Text(a.Values[0])
	if t == nil {
		return "", false
	}

	return t.Value, true
}

// typeLiteral strips a "{x:Type Name}" extension down to Name.
func typeLiteral(s string) string {
	s = strings.TrimSpace(s)

	if inner, ok := strings.CutPrefix(s, "{x:Type"); ok {
		s = strings.TrimSpace(strings.TrimSuffix(inner, "}"))
	}

	return s
}

// selectorTarget returns the name of the element type a style selector
// matches. Alternatives that name different types resolve to their
// nearest common base. A selector beginning with the nesting operator
// inherits the enclosing style's target.
func selectorTarget(c *Context, id markup.NodeID, selector string) string {
	var common *typesys.Type

	for i, alt := range splitTop(selector, func(r rune) bool { return r == ',' }) {
		name := selectorElement(alt)

		if name == "^" {
			name = ""

			for _, s := range c.Tree.Scopes(id, markup.ScopeStyle) {
				name = s.Target.Name

				break
			}
		}

		typ := c.Types.Type(name)
		if typ == nil {
			return name
		}

		if i == 0 {
			common = typ

			continue
		}

		common = commonBase(common, typ)
		if common == nil {
			return ""
		}
	}

	if common == nil {
		return ""
	}

	return common.Name
}

// selectorElement returns the type name in the last segment of a single
// selector alternative, "^" for a nested selector without one, or "".
func selectorElement(sel string) string {
	sel = strings.ReplaceAll(sel, "/template/", " ")

	segs := splitTop(sel, func(r rune) bool { return r == '>' || unicode.IsSpace(r) })
	if len(segs) == 0 {
		return ""
	}

	seg := segs[len(segs)-1]

	if inner, ok := strings.CutPrefix(seg, ":is("); ok {
		if end := strings.IndexByte(inner, ')'); end >= 0 {
			seg = inner[:end]
		}
	}

	if _, after, ok := strings.Cut(seg, "|"); ok {
		seg = after
	}

	end := strings.IndexFunc(seg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if end < 0 {
		end = len(seg)
	}

	if end == 0 && strings.HasPrefix(seg, "^") {
		return "^"
	}

	return seg[:end]
}

// splitTop splits s at runes matching sep outside parentheses, dropping
// empty fields.
func splitTop(s string, sep func(rune) bool) []string {
	var (
		out   []string
		depth int
		start int
	)

	flush := func(end int) {
		if f := strings.TrimSpace(s[start:end]); f != "" {
			out = append(out, f)
		}
	}

	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case depth == 0 && sep(r):
			flush(i)
			start = i + len(string(r))
		}
	}

	flush(len(s))

	return out
}

func commonBase(a, b *typesys.Type) *typesys.Type {
	for t := range a.Lineage() {
		if t.IsAssignableFrom(b) {
			return t
		}
	}

	return nil
}
