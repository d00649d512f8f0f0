package transform

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/stylec/coerce"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// Transformer rewrites a single node. Transform returns id when the node
// stays in place, or the ID of a node that should take its slot.
type Transformer interface {
	Name() string
	Transform(c *Context, id markup.NodeID) (markup.NodeID, error)
}

// Pipeline runs an ordered list of transformers over a tree, each as a
// full pre-order walk.
type Pipeline struct {
	types     *typesys.Table
	wellKnown typesys.WellKnown
	lookup    PropertyLookup
	coercer   coerce.Coercer
	logger    log.Logger
	passes    []Transformer
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithLogger sets the logger handed to each pass.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithCoercer replaces the literal converter.
func WithCoercer(c coerce.Coercer) Option {
	return func(p *Pipeline) { p.coercer = c }
}

// WithPropertyLookup replaces the property resolver used by setters.
func WithPropertyLookup(l PropertyLookup) Option {
	return func(p *Pipeline) { p.lookup = l }
}

// WithTransformers replaces the default passes.
func WithTransformers(passes ...Transformer) Option {
	return func(p *Pipeline) { p.passes = passes }
}

// DefaultTransformers returns the passes run when none are configured.
// Setter resolution depends on the scopes and paths placed by the
// passes before it.
func DefaultTransformers() []Transformer {
	return []Transformer{
		TargetTypeMetadata{},
		PropertyPathResolver{},
		SetterTransformer{},
	}
}

// New returns a pipeline over types. It fails when types lacks any of
// the well-known types.
func New(types *typesys.Table, opts ...Option) (*Pipeline, error) {
	wk, err := types.WellKnown()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		types:     types,
		wellKnown: wk,
		lookup:    types,
		coercer:   coerce.New(types),
		logger:    log.Default(),
		passes:    DefaultTransformers(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Passes returns the names of the configured passes in run order.
func (p *Pipeline) Passes() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}

	return names
}

// Run applies every pass to tree in order. The first error stops the run
// and leaves tree partially transformed. Cancellation is checked between
// passes. A tree parsed against another type table is rejected with
// [typesys.ErrTableMismatch].
func (p *Pipeline) Run(ctx context.Context, tree *markup.Tree) error {
	if tree.Types != nil && tree.Types != p.types {
		return typesys.ErrTableMismatch.With(slog.String("document", tree.Name))
	}

	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return err
		}

		c := &Context{
			Context:    ctx,
			Tree:       tree,
			Types:      p.types,
			WellKnown:  p.wellKnown,
			Properties: p.lookup,
			Coercer:    p.coercer,
			Logger:     p.logger.With(slog.String("pass", pass.Name())),
		}

		start := time.Now()

		if tree.Root != markup.None {
			if err := apply(c, pass, tree.Root); err != nil {
				return err
			}
		}

		attrs := []slog.Attr{
			slog.String("tree", tree.Name),
			slog.Duration("elapsed", time.Since(start)),
		}

		if c.Logger.Enabled(ctx, log.LevelTrace) {
			var sb strings.Builder
			if err := tree.FormatText(ctx, &sb); err == nil {
				attrs = append(attrs, slog.String("result", sb.String()))
			}
		}

		c.Logger.TraceContext(ctx, "pass complete", attrs...)
	}

	return nil
}

func apply(c *Context, pass Transformer, id markup.NodeID) error {
	parent := c.Tree.Parent(id)

	out, err := pass.Transform(c, id)
	if err != nil {
		return err
	}

	if out != id && !spliced(c.Tree, parent, out) {
		if err := c.Tree.Replace(parent, id, out); err != nil {
			return err
		}

		// The replacement may hold the old node; otherwise nothing can reach it.
		if c.Tree.Parent(id) == markup.None {
			c.Tree.Discard(id)
		}
	}

	for _, child := range c.Tree.Children(out) {
		if err := apply(c, pass, child); err != nil {
			return err
		}
	}

	return nil
}

// spliced reports whether the transformer already put id in parent's slot.
func spliced(t *markup.Tree, parent, id markup.NodeID) bool {
	if parent == markup.None {
		return t.Root == id
	}

	return t.Parent(id) == parent
}
