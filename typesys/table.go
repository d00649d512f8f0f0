package typesys

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
)

// ObjectName is the name of the root type every other type derives from.
const ObjectName = "Object"

// Table is the registry of known types and their properties.
// A Table is not safe for concurrent mutation; once loaded it may be queried
// from any number of goroutines.
type Table struct {
	types  map[string]*Type
	order  []string
	sealed bool
}

// New returns an empty Table.
func New() *Table {
	return &Table{types: map[string]*Type{}}
}

//go:embed default.yaml
var defaultTable []byte

// Builtin returns a new Table populated with the built-in control library.
// Unlike [Default], the result may be extended with [Table.Load].
func Builtin() *Table {
	t := New()
	if err := t.Load(bytes.NewReader(defaultTable)); err != nil {
		panic("typesys: invalid built-in type table: " + err.Error())
	}

	return t
}

var defaultOnce = sync.OnceValue(func() *Table {
	t := Builtin()
	t.sealed = true

	return t
})

// Default returns the shared built-in Table. Every call returns the same
// instance, so documents parsed and compiled against Default agree on type
// identity. It cannot be extended; use [Builtin] for that.
func Default() *Table { return defaultOnce() }

// Sealed reports whether t rejects [Table.Load].
func (t *Table) Sealed() bool { return t.sealed }

// Type returns the type named name, or nil.
func (t *Table) Type(name string) *Type {
	return t.types[strings.TrimSpace(name)]
}

// Types iterates all types in the order they were loaded.
func (t *Table) Types() iter.Seq[*Type] {
	return func(yield func(*Type) bool) {
		for _, name := range t.order {
			if !yield(t.types[name]) {
				return
			}
		}
	}
}

// Names returns the names of all types in load order.
func (t *Table) Names() []string {
	return slices.Clone(t.order)
}

// LookupProperty resolves name against owner. The name is either a plain
// property name, searched on owner and its bases, or an attached form
// "Owner.Name" or "(Owner.Name)", searched on the named owner.
func (t *Table) LookupProperty(owner *Type, name string) (*Property, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")

	search := owner

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		search = t.Type(name[:i])
		if search == nil {
			return nil, ErrTypeNotFound.With(slog.String("type", name[:i]))
		}

		name = name[i+1:]
	}

	if search == nil {
		return nil, ErrTypeNotFound.With(slog.String("property", name))
	}

	for c := range search.Lineage() {
		if p, ok := c.Property(name); ok {
			return p, nil
		}
	}

	return nil, ErrPropertyNotFound.With(
		slog.String("type", search.Name),
		slog.String("property", name),
	)
}

// minSuggestPrefix is the shortest prefix of a misspelled name Suggest
// matches on its own.
const minSuggestPrefix = 2

// Suggest returns up to three property names on owner and its bases that
// fuzzily match name, best match first. When name as a whole matches
// nothing, successively shorter prefixes of it are tried, down to half its
// length, so transposed letters near the end still find a candidate.
func (t *Table) Suggest(owner *Type, name string) []string {
	var names []string

	for c := range owner.Lineage() {
		for p := range c.Properties() {
			if !slices.Contains(names, p.Name) {
				names = append(names, p.Name)
			}
		}
	}

	var matches fuzzy.Matches

	pattern := []rune(strings.TrimSpace(name))
	shortest := max(minSuggestPrefix, (len(pattern)+1)/2)

	for n := len(pattern); n > 0; n-- {
		if n < len(pattern) && n < shortest {
			break
		}

		if matches = fuzzy.Find(string(pattern[:n]), names); len(matches) > 0 {
			break
		}
	}

	out := make([]string, 0, 3)
	for _, m := range matches {
		if len(out) == cap(out) {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// LoadFile loads a type table from the YAML file at path.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ErrDecodeTable.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	if err := t.Load(f); err != nil {
		var te *Error
		if errors.As(err, &te) {
			return te.With(slog.String("path", path))
		}

		return err
	}

	return nil
}

type tableDecl struct {
	Types []typeDecl `yaml:"types"`
}

type typeDecl struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Base       string         `yaml:"base"`
	Implements []string       `yaml:"implements"`
	Nullable   bool           `yaml:"nullable"`
	Converter  string         `yaml:"converter"`
	Enum       []string       `yaml:"enum"`
	Constraint string         `yaml:"constraint"`
	Properties []propertyDecl `yaml:"properties"`
}

type propertyDecl struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Attached bool   `yaml:"attached"`
	ReadOnly bool   `yaml:"readonly"`
}

// Load decodes a YAML type table from r and adds its types to t.
// Loading into a sealed table fails with [ErrSealedTable].
// Unknown fields, duplicate types and unresolved type names are errors; on
// error t is left unchanged.
func (t *Table) Load(r io.Reader) error {
	if t.sealed {
		return ErrSealedTable
	}

	var decl tableDecl

	if err := yaml.NewDecoder(r, yaml.Strict()).Decode(&decl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return ErrDecodeTable.Wrap(errors.New(yaml.FormatError(err, false, true)))
	}

	added := make(map[string]*Type, len(decl.Types))
	order := make([]string, 0, len(decl.Types))

	for _, d := range decl.Types {
		name := strings.TrimSpace(d.Name)

		_, exists := t.types[name]
		if _, dup := added[name]; dup || exists || name == "" {
			return ErrDuplicateType.With(slog.String("type", name))
		}

		kind, err := ParseKind(d.Kind)
		if err != nil {
			return err
		}

		converter := d.Converter
		if converter == "" && len(d.Enum) > 0 {
			converter = "enum"
		}

		added[name] = &Type{
			Name:       name,
			Kind:       kind,
			Nullable:   d.Nullable,
			Converter:  converter,
			Enum:       slices.Clone(d.Enum),
			Constraint: d.Constraint,
		}
		order = append(order, name)
	}

	resolve := func(name string) (*Type, error) {
		name = strings.TrimSpace(name)
		if typ, ok := added[name]; ok {
			return typ, nil
		}

		if typ, ok := t.types[name]; ok {
			return typ, nil
		}

		return nil, ErrTypeNotFound.With(slog.String("type", name))
	}

	for _, d := range decl.Types {
		typ := added[strings.TrimSpace(d.Name)]

		switch {
		case d.Base != "":
			base, err := resolve(d.Base)
			if err != nil {
				return err
			}

			typ.Base = base

		case typ.Name != ObjectName:
			typ.Base, _ = resolve(ObjectName)
		}

		for _, name := range d.Implements {
			iface, err := resolve(name)
			if err != nil {
				return err
			}

			typ.Interfaces = append(typ.Interfaces, iface)
		}
	}

	for _, name := range order {
		if cyclic(added[name]) {
			return ErrInheritanceCycle.With(slog.String("type", name))
		}
	}

	for _, d := range decl.Types {
		typ := added[strings.TrimSpace(d.Name)]

		for _, pd := range d.Properties {
			ptype, err := resolve(pd.Type)
			if err != nil {
				return err
			}

			p := newProperty(typ, strings.TrimSpace(pd.Name), ptype, pd.Attached, pd.ReadOnly)
			if err := typ.declare(p); err != nil {
				return err
			}
		}
	}

	for _, name := range order {
		t.types[name] = added[name]
	}

	t.order = append(t.order, order...)

	return nil
}

func cyclic(typ *Type) bool {
	seen := map[*Type]bool{}

	for c := typ; c != nil; c = c.Base {
		if seen[c] {
			return true
		}

		seen[c] = true
	}

	return false
}
