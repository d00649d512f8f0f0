package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stylec/typesys"
)

// List prints the loaded types and their properties as a table.
type List struct {
	Type      []string `help:"Only list the named type(s)"                   name:"type" short:"T"`
	Inherited bool     `help:"Include properties inherited from base types"             short:"a"`
	Markdown  bool     `help:"Render as a Markdown table"`
}

// Run executes the types command.
func (l *List) Run(ctx context.Context) error {
	types, err := loadTypes(ctx)
	if err != nil {
		return err
	}

	selected, err := l.selected(types)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(outputFrom(ctx))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Kind", "Base", "Property", "Value Type", "Setter"})

	for _, typ := range selected {
		head := table.Row{typ.Name, typ.Kind.String(), baseName(typ)}

		var rows int

		for owner := range typ.Lineage() {
			if owner != typ && !l.Inherited {
				break
			}

			for p := range owner.Properties() {
				t.AppendRow(append(head[:3:3], propertyName(typ, p), p.Type.String(), setterName(p)))

				rows++
			}
		}

		if rows == 0 {
			t.AppendRow(append(head[:3:3], "", "", ""))
		}

		t.AppendSeparator()
	}

	if l.Markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	return nil
}

// selected returns the types named by --type, or every type in load order.
func (l *List) selected(types *typesys.Table) ([]*typesys.Type, error) {
	if len(l.Type) == 0 {
		var all []*typesys.Type
		for typ := range types.Types() {
			all = append(all, typ)
		}

		return all, nil
	}

	out := make([]*typesys.Type, 0, len(l.Type))

	for _, name := range l.Type {
		typ := types.Type(name)
		if typ == nil {
			err := ErrUnknownType.With(slog.String("type", name))

			if matches := fuzzy.Find(name, types.Names()); len(matches) > 0 {
				err = err.With(slog.String("suggest", matches[0].Str))
			}

			return nil, err
		}

		out = append(out, typ)
	}

	return out, nil
}

func baseName(typ *typesys.Type) string {
	if typ.Base == nil {
		return ""
	}

	return typ.Base.Name
}

// propertyName qualifies properties declared on another type, and attached
// properties, with their declaring type.
func propertyName(typ *typesys.Type, p *typesys.Property) string {
	if p.Attached || p.DeclaringType != typ {
		return p.String()
	}

	return p.Name
}

func setterName(p *typesys.Property) string {
	if len(p.Setters) == 0 {
		return "(read-only)"
	}

	names := make([]string, len(p.Setters))
	for i, s := range p.Setters {
		names[i] = s.Accessor.Name
	}

	return strings.Join(names, ", ")
}
