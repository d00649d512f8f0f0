package markup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/typesys"
)

// Object mapping keys.
const (
	KeyType     = "type"
	KeyProps    = "props"
	KeyChildren = "children"
	KeyText     = "text"
)

// DirectivePrefix marks a props key as a compiler directive.
const DirectivePrefix = "x:"

// NullText is the markup spelling of a null value.
const NullText = "{x:Null}"

// Option configures [Parse].
type Option func(*options)

type options struct {
	types  *typesys.Table
	logger log.Logger
}

// WithTypes sets the type table used to resolve object types and property
// names. The default is [typesys.Default].
func WithTypes(types *typesys.Table) Option {
	return func(o *options) { o.types = types }
}

// WithLogger sets the logger used while parsing.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Parse builds a [Tree] from a YAML encoded markup document.
//
// Every object is a mapping with a "type" key naming its type. An optional
// "props" mapping assigns properties; a scalar value is text, a mapping is a
// nested object and a sequence assigns several values. Keys starting with
// "x:" are directives. An optional "children" sequence holds content: nested
// objects or bare text. A "text" key adds one bare text child.
//
//	type: Style
//	props:
//	  Selector: Button.primary
//	children:
//	  - type: Setter
//	    props: { Property: Width, Value: 42 }
//
// Object types must exist in the type table. Property names that do not
// resolve keep their spelling with a nil property for later stages to
// report.
func Parse(ctx context.Context, name string, src []byte, opts ...Option) (*Tree, error) {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.types == nil {
		o.types = typesys.Default()
	}

	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		return nil, yamlError(err)
	}

	var body []ast.Node

	for _, doc := range file.Docs {
		if doc != nil && doc.Body != nil {
			body = append(body, doc.Body)
		}
	}

	switch {
	case len(body) == 0:
		return nil, ErrEmptyDocument.With(slog.String("document", name))
	case len(body) > 1:
		return nil, ErrMultipleDocument.At(position(body[1])).
			With(slog.String("document", name))
	}

	b := builder{
		ctx:    ctx,
		tree:   NewTree(name, src),
		types:  o.types,
		logger: o.logger.With(slog.String("document", name)),
	}

	root, err := b.object(body[0])
	if err != nil {
		return nil, err
	}

	b.tree.Root = root
	b.tree.Types = o.types

	b.logger.DebugContext(ctx, "parsed document",
		slog.Int("nodes", b.tree.Len()),
	)

	return b.tree, nil
}

func yamlError(err error) error {
	var ye yaml.Error
	if errors.As(err, &ye) {
		e := ErrParse.Wrap(errors.New(ye.GetMessage()))
		if tok := ye.GetToken(); tok != nil && tok.Position != nil {
			e = e.At(Position{Line: tok.Position.Line, Column: tok.Position.Column})
		}

		return e
	}

	return ErrParse.Wrap(err)
}

type builder struct {
	ctx    context.Context
	tree   *Tree
	types  *typesys.Table
	logger log.Logger
}

func position(n ast.Node) Position {
	if n == nil {
		return Position{}
	}

	tok := n.GetToken()
	if tok == nil || tok.Position == nil {
		return Position{}
	}

	return Position{Line: tok.Position.Line, Column: tok.Position.Column}
}

// unwrap strips tags and anchors.
func unwrap(n ast.Node) ast.Node {
	for {
		switch v := n.(type) {
		case *ast.TagNode:
			n = v.Value
		case *ast.AnchorNode:
			n = v.Value
		default:
			return n
		}
	}
}

// pairs returns the key/value pairs of a mapping, or false if n is not one.
func pairs(n ast.Node) ([]*ast.MappingValueNode, bool) {
	switch v := unwrap(n).(type) {
	case *ast.MappingNode:
		return v.Values, true
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{v}, true
	default:
		return nil, false
	}
}

// scalar returns the text of a scalar node, or false for collections.
func scalar(n ast.Node) (string, bool) {
	switch v := unwrap(n).(type) {
	case nil, *ast.NullNode:
		return NullText, true
	case *ast.StringNode:
		return v.Value, true
	case *ast.LiteralNode:
		return v.Value.Value, true
	case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode:
		return "", false
	case ast.ScalarNode:
		return v.GetToken().Value, true
	default:
		return "", false
	}
}

func keyName(kv *ast.MappingValueNode) string {
	if s, ok := scalar(kv.Key); ok {
		return strings.TrimSpace(s)
	}

	return ""
}

func (b *builder) object(n ast.Node) (NodeID, error) {
	kvs, ok := pairs(n)
	if !ok {
		return None, ErrExpectedObject.At(position(n))
	}

	obj := &Object{}

	if len(kvs) > 0 {
		obj.Position = position(kvs[0].Key)
	}

	var typeKey *ast.MappingValueNode

	for _, kv := range kvs {
		if keyName(kv) == KeyType {
			typeKey = kv
		}
	}

	if typeKey == nil {
		return None, ErrMissingType.At(obj.Position)
	}

	obj.TypeName, _ = scalar(typeKey.Value)
	obj.TypeName = strings.TrimSpace(obj.TypeName)

	obj.Type = b.types.Type(obj.TypeName)
	if obj.Type == nil {
		return None, ErrUnknownType.At(position(typeKey.Value)).
			With(slog.String("type", obj.TypeName))
	}

	for _, kv := range kvs {
		var err error

		switch key := keyName(kv); key {
		case KeyType:
		case KeyProps:
			err = b.props(obj, kv.Value)
		case KeyChildren:
			err = b.children(obj, kv.Value)
		case KeyText:
			var id NodeID

			id, err = b.text(kv.Value)
			obj.Children = append(obj.Children, id)
		default:
			err = ErrUnknownKey.At(position(kv.Key)).With(slog.String("key", key))
		}

		if err != nil {
			return None, err
		}
	}

	b.logger.TraceContext(b.ctx, "object",
		slog.String("type", obj.TypeName),
		slog.String("pos", obj.Position.String()),
	)

	return b.tree.Add(obj), nil
}

func (b *builder) props(obj *Object, n ast.Node) error {
	if _, null := unwrap(n).(*ast.NullNode); null {
		return nil
	}

	kvs, ok := pairs(n)
	if !ok {
		return ErrInvalidValue.At(position(n)).With(slog.String("key", KeyProps))
	}

	for _, kv := range kvs {
		name := keyName(kv)

		if strings.HasPrefix(name, DirectivePrefix) {
			value, ok := scalar(kv.Value)
			if !ok {
				return ErrInvalidValue.At(position(kv.Value)).
					With(slog.String("directive", name))
			}

			obj.Directives = append(obj.Directives, Directive{
				Position: position(kv.Key),
				Name:     name,
				Value:    strings.TrimSpace(value),
			})

			continue
		}

		a := &Assignment{Position: position(kv.Key), Name: name}

		if p, err := b.types.LookupProperty(obj.Type, name); err == nil {
			a.Property = p
		} else {
			b.logger.TraceContext(b.ctx, "unresolved property",
				slog.String("type", obj.TypeName),
				slog.String("property", name),
			)
		}

		values := []ast.Node{kv.Value}
		if seq, ok := unwrap(kv.Value).(*ast.SequenceNode); ok {
			values = seq.Values
		}

		for _, v := range values {
			id, err := b.value(v)
			if err != nil {
				return err
			}

			a.Values = append(a.Values, id)
		}

		obj.Children = append(obj.Children, b.tree.Add(a))
	}

	return nil
}

func (b *builder) children(obj *Object, n ast.Node) error {
	switch v := unwrap(n).(type) {
	case *ast.NullNode:
		return nil

	case *ast.SequenceNode:
		for _, item := range v.Values {
			id, err := b.value(item)
			if err != nil {
				return err
			}

			obj.Children = append(obj.Children, id)
		}

		return nil

	default:
		return ErrInvalidValue.At(position(n)).With(slog.String("key", KeyChildren))
	}
}

// value builds a text node for a scalar and an object for a mapping.
func (b *builder) value(n ast.Node) (NodeID, error) {
	if _, ok := pairs(n); ok {
		return b.object(n)
	}

	return b.text(n)
}

func (b *builder) text(n ast.Node) (NodeID, error) {
	s, ok := scalar(n)
	if !ok {
		return None, ErrInvalidValue.At(position(n))
	}

	return b.tree.Add(&Text{Position: position(n), Value: s}), nil
}
