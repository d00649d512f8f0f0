package emit

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/stylec/coerce"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// Emitter lowers transformed trees to instruction listings.
type Emitter struct {
	types   *typesys.Table
	setter  *typesys.Type
	coercer coerce.Coercer
	logger  log.Logger
}

// Option configures an [Emitter].
type Option func(*Emitter)

func WithCoercer(c coerce.Coercer) Option {
	return func(e *Emitter) { e.coercer = c }
}

func WithLogger(logger log.Logger) Option {
	return func(e *Emitter) { e.logger = logger }
}

// New returns an emitter over types.
func New(types *typesys.Table, opts ...Option) (*Emitter, error) {
	wk, err := types.WellKnown()
	if err != nil {
		return nil, err
	}

	e := &Emitter{
		types:   types,
		setter:  wk.Setter,
		coercer: coerce.New(types),
		logger:  log.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Emit returns the program that builds tree. Every object and assignment
// must be resolved, and every setter must carry exactly one resolved
// property or property path.
func (e *Emitter) Emit(ctx context.Context, tree *markup.Tree) (*Program, error) {
	if tree.Types != nil && tree.Types != e.types {
		return nil, typesys.ErrTableMismatch.With(slog.String("document", tree.Name))
	}

	g := &gen{
		Emitter: e,
		ctx:     ctx,
		tree:    tree,
		prog:    &Program{Name: tree.Name},
	}

	if tree.Root != markup.None {
		if _, err := g.node(tree.Root, 0); err != nil {
			return nil, err
		}
	}

	e.logger.DebugContext(ctx, "emitted program",
		slog.String("tree", tree.Name),
		slog.Int("instructions", len(g.prog.Code)),
		slog.Int("accessors", len(g.prog.Accessors)),
	)

	return g.prog, nil
}

type gen struct {
	*Emitter

	ctx  context.Context
	tree *markup.Tree
	prog *Program
}

func (g *gen) emit(op Op, operand string, depth int, pos markup.Position) {
	g.prog.Code = append(g.prog.Code, Instruction{
		Op:       op,
		Operand:  operand,
		Accessor: -1,
		Depth:    depth,
		Pos:      pos,
	})
}

// node emits the object or scope id and returns the static type of the
// value it leaves behind.
func (g *gen) node(id markup.NodeID, depth int) (*typesys.Type, error) {
	switch n := g.tree.Node(id).(type) {
	case *markup.Object:
		return n.Type, g.object(id, n, depth)

	case *markup.TargetTypeScope:
		g.emit(OpScope, n.Scope.String()+" "+n.Target.String(), depth, n.Pos())

		return g.node(n.Value, depth+1)

	default:
		pos := markup.Position{}
		if n != nil {
			pos = n.Pos()
		}

		return nil, ErrUnsupportedNode.At(pos).With(slog.Int("node", int(id)))
	}
}

func (g *gen) object(id markup.NodeID, obj *markup.Object, depth int) error {
	if err := g.ctx.Err(); err != nil {
		return err
	}

	if obj.Type == nil {
		return ErrUnresolvedType.At(obj.Pos()).With(slog.String("type", obj.TypeName))
	}

	setter := obj.Type == g.setter
	if setter {
		if err := g.checkSetter(id, obj); err != nil {
			return err
		}
	}

	g.emit(OpNewObj, obj.Type.Name, depth, obj.Pos())

	for _, child := range g.tree.Children(id) {
		switch n := g.tree.Node(child).(type) {
		case *markup.Assignment:
			if err := g.assign(n, depth+1); err != nil {
				return err
			}

		case *markup.Text:
			if setter {
				g.emit(OpDefer, strconv.Quote(n.Value), depth+1, n.Pos())

				continue
			}

			g.emit(OpLdc, strconv.Quote(n.Value)+" : "+typesys.StringName, depth+1, n.Pos())
			g.emit(OpAdd, "", depth+1, markup.Position{})

		default:
			if _, err := g.node(child, depth+1); err != nil {
				return err
			}

			g.emit(OpAdd, "", depth+1, markup.Position{})
		}
	}

	return nil
}

// checkSetter requires exactly one of a resolved property handle or a typed
// property path on the setter id.
func (g *gen) checkSetter(id markup.NodeID, obj *markup.Object) error {
	resolved := 0

	for _, child := range g.tree.Children(id) {
		a, ok := g.tree.Node(child).(*markup.Assignment)
		if !ok || len(a.Values) != 1 {
			continue
		}

		switch v := g.tree.Node(a.Values[0]).(type) {
		case *markup.PropertyHandle:
			if v.Property != nil {
				resolved++
			}
		case *markup.PropertyPath:
			if v.Type != nil {
				resolved++
			}
		}
	}

	if resolved != 1 {
		return ErrUnresolvedSetter.At(obj.Pos()).With(slog.Int("resolved", resolved))
	}

	return nil
}

func (g *gen) assign(a *markup.Assignment, depth int) error {
	if a.Property == nil {
		return ErrUnresolvedProperty.At(a.Pos()).With(slog.String("property", a.Name))
	}

	for _, v := range a.Values {
		if err := g.value(a, v, depth); err != nil {
			return err
		}
	}

	return nil
}

// value emits one value of a and the call that assigns it.
func (g *gen) value(a *markup.Assignment, id markup.NodeID, depth int) error {
	p := a.Property

	var typ *typesys.Type

	switch n := g.tree.Node(id).(type) {
	case *markup.Text:
		return g.literal(p, n, depth)

	case *markup.PropertyHandle:
		g.emit(OpLdProp, n.Property.String(), depth, n.Pos())
		typ = p.Type

	case *markup.PropertyPath:
		g.emit(OpLdPath, n.Source+" : "+n.Type.String(), depth, n.Pos())
		typ = p.Type

	default:
		t, err := g.node(id, depth)
		if err != nil {
			return err
		}

		typ = t
	}

	for _, s := range p.Setters {
		if s.Applicable(typ, false) {
			g.call(s, depth, a.Pos())

			return nil
		}
	}

	return ErrNoApplicableSetter.At(a.Pos()).With(
		slog.String("property", p.String()),
		slog.String("type", typ.String()),
	)
}

// literal converts text for the first overload of p that accepts it.
func (g *gen) literal(p *typesys.Property, text *markup.Text, depth int) error {
	for _, s := range p.Setters {
		c, err := g.coercer.Coerce(text.Value, s.Accepts)
		if err != nil || !s.Applicable(c.Type, c.Null) {
			continue
		}

		if c.Null {
			g.emit(OpLdNull, "", depth, text.Pos())
		} else {
			g.emit(OpLdc, c.String()+" : "+c.Type.Name, depth, text.Pos())
		}

		g.call(s, depth, markup.Position{})

		return nil
	}

	return ErrNoApplicableSetter.At(text.Pos()).With(
		slog.String("property", p.String()),
		slog.String("text", text.Value),
	)
}

func (g *gen) call(s typesys.Setter, depth int, pos markup.Position) {
	if s.Box() {
		g.emit(OpBox, s.Accepts.Name, depth, markup.Position{})
	}

	g.emit(OpCall, s.Accessor.String(), depth, pos)
	g.prog.Code[len(g.prog.Code)-1].Accessor = g.prog.accessor(s)
}
