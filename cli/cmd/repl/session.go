package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stylec/emit"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/transform"
	"github.com/ardnew/stylec/typesys"
)

// document wraps one setter in a style targeting a single type. The setter
// props are spliced verbatim at setterLine, setterColumn so that positions
// reported against the document map back to the input.
const document = `type: Style
props:
  Selector: %q
children:
  - type: Setter
    props: %s
`

const (
	setterLine   = 6
	setterColumn = len("    props: ") + 1
)

// setterKeys are the props a setter accepts besides attached names.
var setterKeys = []string{"Property", "PropertyPath", "Value"}

// Session compiles single setters against a current target type.
type Session struct {
	types    *typesys.Table
	wk       typesys.WellKnown
	pipeline *transform.Pipeline
	emitter  *emit.Emitter
	logger   log.Logger
	target   *typesys.Type
}

// Result is a compiled setter.
type Result struct {
	// Tree describes the rewritten setter subtree, one node per line,
	// indented by depth.
	Tree []string
	// Code is the emitted listing from the setter's construction onward.
	Code []string
}

func (r *Result) String() string {
	return strings.Join(r.Tree, "\n") + "\n" + strings.Join(r.Code, "\n")
}

// NewSession returns a session over types whose target type is named
// target.
func NewSession(types *typesys.Table, target string, logger log.Logger) (*Session, error) {
	wk, err := types.WellKnown()
	if err != nil {
		return nil, err
	}

	pipeline, err := transform.New(types, transform.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	emitter, err := emit.New(types, emit.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	s := &Session{
		types:    types,
		wk:       wk,
		pipeline: pipeline,
		emitter:  emitter,
		logger:   logger,
	}

	if err := s.SetTarget(target); err != nil {
		return nil, err
	}

	return s, nil
}

// Target returns the type setters are resolved against.
func (s *Session) Target() *typesys.Type { return s.target }

// SetTarget changes the target type. Unknown names fail with
// [ErrUnknownType], suggesting the closest type name.
func (s *Session) SetTarget(name string) error {
	typ := s.types.Type(name)
	if typ == nil {
		err := ErrUnknownType.With(slog.String("type", name))

		if matches := fuzzy.Find(name, s.types.Names()); len(matches) > 0 {
			err = err.Suggest(matches[0].Str)
		}

		return err
	}

	s.target = typ

	return nil
}

// TypeNames returns every type name in load order.
func (s *Session) TypeNames() []string { return s.types.Names() }

// Properties returns the properties owner and its bases declare, nearest
// first, shadowed names omitted. A nil owner means the target type.
func (s *Session) Properties(owner *typesys.Type) []*typesys.Property {
	if owner == nil {
		owner = s.target
	}

	var (
		out  []*typesys.Property
		seen []string
	)

	for c := range owner.Lineage() {
		for p := range c.Properties() {
			if !slices.Contains(seen, p.Name) {
				seen = append(seen, p.Name)
				out = append(out, p)
			}
		}
	}

	return out
}

// Type returns the type named name, or nil.
func (s *Session) Type(name string) *typesys.Type { return s.types.Type(name) }

// Eval compiles the setter whose props are given as a YAML flow mapping,
// with or without the enclosing braces:
//
//	Property: Width, Value: 42
//	{PropertyPath: (Grid.Row), Value: 1}
func (s *Session) Eval(ctx context.Context, input string) (*Result, error) {
	props := strings.TrimSpace(input)
	if !strings.HasPrefix(props, "{") {
		props = "{" + props + "}"
	}

	var check yaml.MapSlice
	if err := yaml.Unmarshal([]byte(props), &check); err != nil {
		return nil, ErrInput.Wrap(errors.New(yaml.FormatError(err, false, false)))
	}

	src := fmt.Sprintf(document, s.target.Name, props)

	tree, err := markup.Parse(ctx, "repl", []byte(src),
		markup.WithTypes(s.types),
		markup.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	if err := s.pipeline.Run(ctx, tree); err != nil {
		return nil, err
	}

	id := s.setter(tree)
	if id == markup.None {
		return nil, ErrInput.Wrap(errors.New("setter not found"))
	}

	res := &Result{Tree: describe(tree, id)}

	prog, err := s.emitter.Emit(ctx, tree)
	if err != nil {
		return nil, err
	}

	start := slices.IndexFunc(prog.Code, func(in emit.Instruction) bool {
		return in.Op == emit.OpNewObj && in.Operand == s.wk.Setter.Name
	})

	for _, in := range prog.Code[max(start, 0):] {
		res.Code = append(res.Code, in.String())
	}

	s.logger.DebugContext(ctx, "evaluated setter",
		slog.String("target", s.target.Name),
		slog.Int("instructions", len(res.Code)),
	)

	return res, nil
}

// Column returns the 1-based column of the input that err points at, or 0
// when err carries no position inside the setter.
func (s *Session) Column(input string, err error) int {
	var pe interface{ Pos() markup.Position }
	if !errors.As(err, &pe) {
		return 0
	}

	pos := pe.Pos()
	if pos.Line != setterLine || pos.Column < setterColumn {
		return 0
	}

	col := pos.Column - setterColumn + 1

	// Input given without braces is shifted by the inserted "{".
	if !strings.HasPrefix(strings.TrimSpace(input), "{") {
		col--
	}

	col += len(input) - len(strings.TrimLeft(input, " \t"))

	return max(col, 1)
}

func (s *Session) setter(tree *markup.Tree) markup.NodeID {
	found := markup.None

	tree.Walk(func(id markup.NodeID, _ int) bool {
		if found != markup.None {
			return false
		}

		if obj, ok := tree.Node(id).(*markup.Object); ok && obj.Type == s.wk.Setter {
			found = id
		}

		return true
	})

	return found
}

// describe renders the subtree rooted at id, one node per line.
func describe(tree *markup.Tree, id markup.NodeID) []string {
	var out []string

	base, done := -1, false

	tree.Walk(func(n markup.NodeID, depth int) bool {
		if done {
			return false
		}

		switch {
		case n == id:
			base = depth
		case base < 0:
			return true
		case depth <= base:
			done = true

			return false
		}

		out = append(out, strings.Repeat("  ", depth-base)+tree.Describe(n))

		return true
	})

	return out
}
