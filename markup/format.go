package markup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-yaml"
)

// Describe returns a one-line description of the node id.
func (t *Tree) Describe(id NodeID) string {
	switch n := t.Node(id).(type) {
	case *Object:
		var b strings.Builder

		b.WriteString(n.TypeName)

		for _, d := range n.Directives {
			b.WriteString(" " + d.Name + "=" + strconv.Quote(d.Value))
		}

		return b.String()

	case *Assignment:
		s := "." + n.Name
		if n.Property == nil {
			return s + " (unresolved)"
		}

		s += " -> " + n.Property.String()

		if n.Property.Synthesized {
			setters := make([]string, len(n.Property.Setters))
			for i, st := range n.Property.Setters {
				setters[i] = st.Kind.String() + "(" + st.Accepts.String() + ")"
			}

			s += " [" + strings.Join(setters, " ") + "]"
		}

		return s

	case *Text:
		return strconv.Quote(n.Value)

	case *TargetTypeScope:
		return "scope " + n.Scope.String() + " " + n.Target.String()

	case *PropertyHandle:
		return "property " + n.Property.String() + " : " + n.ValueType().String()

	case *PropertyPath:
		return "path " + n.Source + " : " + n.Type.String()

	default:
		return "<discarded>"
	}
}

// FormatText writes t as an indented outline, one node per line.
func (t *Tree) FormatText(_ context.Context, w io.Writer) error {
	var err error

	t.Walk(func(id NodeID, depth int) bool {
		if err != nil {
			return false
		}

		_, err = fmt.Fprintf(w, "%s%s @%s\n",
			strings.Repeat("  ", depth), t.Describe(id), t.Node(id).Pos())

		return err == nil
	})

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// FormatJSON writes t as JSON.
func (t *Tree) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(t.view(t.Root), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(t.view(t.Root))
	}

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// FormatYAML writes t as YAML.
func (t *Tree) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, t.view(t.Root), opts...)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	if _, err = fmt.Fprint(w, string(data)); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// FormatDump writes a Go-syntax dump of t for debugging.
func (t *Tree) FormatDump(_ context.Context, w io.Writer) error {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	cfg.Fdump(w, t.view(t.Root))

	return nil
}

// nodeView is the serialized form of a node and its subtree.
type nodeView struct {
	ID         int               `json:"id"                   yaml:"id"`
	Kind       string            `json:"kind"                 yaml:"kind"`
	Pos        string            `json:"pos,omitempty"        yaml:"pos,omitempty"`
	Type       string            `json:"type,omitempty"       yaml:"type,omitempty"`
	Name       string            `json:"name,omitempty"       yaml:"name,omitempty"`
	Property   string            `json:"property,omitempty"   yaml:"property,omitempty"`
	Setters    []string          `json:"setters,omitempty"    yaml:"setters,omitempty"`
	Value      string            `json:"value,omitempty"      yaml:"value,omitempty"`
	Scope      string            `json:"scope,omitempty"      yaml:"scope,omitempty"`
	Directives map[string]string `json:"directives,omitempty" yaml:"directives,omitempty"`
	Children   []*nodeView       `json:"children,omitempty"   yaml:"children,omitempty"`
}

func (t *Tree) view(id NodeID) *nodeView {
	node := t.Node(id)
	if node == nil {
		return nil
	}

	v := &nodeView{ID: int(id), Kind: node.Kind().String(), Pos: node.Pos().String()}

	switch n := node.(type) {
	case *Object:
		v.Type = n.TypeName

		if len(n.Directives) > 0 {
			v.Directives = make(map[string]string, len(n.Directives))
			for _, d := range n.Directives {
				v.Directives[d.Name] = d.Value
			}
		}

	case *Assignment:
		v.Name = n.Name

		if n.Property != nil {
			v.Property = n.Property.String()
			v.Type = n.Property.Type.String()

			if n.Property.Synthesized {
				for _, s := range n.Property.Setters {
					v.Setters = append(v.Setters, s.String())
				}
			}
		}

	case *Text:
		v.Value = n.Value

	case *TargetTypeScope:
		v.Scope = n.Scope.String()
		v.Type = n.Target.String()

	case *PropertyHandle:
		v.Property = n.Property.String()
		v.Type = n.ValueType().String()

	case *PropertyPath:
		v.Value = n.Source
		v.Type = n.Type.String()
	}

	for _, c := range t.Children(id) {
		if cv := t.view(c); cv != nil {
			v.Children = append(v.Children, cv)
		}
	}

	return v
}
