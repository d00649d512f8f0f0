package transform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// recorder records the order nodes are visited in and can replace text
// nodes.
type recorder struct {
	visited []markup.NodeID
	upper   bool
}

func (*recorder) Name() string { return "recorder" }

func (r *recorder) Transform(c *Context, id markup.NodeID) (markup.NodeID, error) {
	r.visited = append(r.visited, id)

	if t := c.Text(id); t != nil && r.upper {
		return c.Tree.Add(&markup.Text{Position: t.Position, Value: strings.ToUpper(t.Value)}), nil
	}

	return id, nil
}

type failing struct{ err error }

func (failing) Name() string { return "failing" }

func (f failing) Transform(*Context, markup.NodeID) (markup.NodeID, error) {
	return markup.None, f.err
}

func TestPipeline_DefaultPasses(t *testing.T) {
	p, err := New(typesys.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"target-type", "property-path", "setter"}, p.Passes())
}

func TestPipeline_RequiresWellKnownTypes(t *testing.T) {
	tbl := typesys.New()
	require.NoError(t, tbl.Load(strings.NewReader("types:\n  - name: Object\n")))

	_, err := New(tbl)
	require.ErrorIs(t, err, typesys.ErrWellKnownMissing)
}

func TestPipeline_PreOrderSplicesReplacements(t *testing.T) {
	tree := parse(t, `type: StackPanel
props:
  Tag: low
children:
  - type: TextBlock
    props:
      Text: hello
`)

	rec := &recorder{upper: true}
	require.NoError(t, run(t, tree, WithTransformers(rec)))
	require.NoError(t, tree.Validate())

	var walked []markup.NodeID
	tree.Walk(func(id markup.NodeID, _ int) bool {
		walked = append(walked, id)

		return true
	})

	require.Len(t, rec.visited, len(walked))
	assert.Equal(t, tree.Root, rec.visited[0])

	var texts []string
	tree.Walk(func(id markup.NodeID, _ int) bool {
		if t, ok := tree.Node(id).(*markup.Text); ok {
			texts = append(texts, t.Value)
		}

		return true
	})

	assert.Equal(t, []string{"LOW", "HELLO"}, texts)
}

func TestPipeline_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}

	err := run(t, parse(t, "type: Button\n"), WithTransformers(failing{boom}, rec))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, rec.visited)
}

func TestPipeline_Canceled(t *testing.T) {
	p, err := New(typesys.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Run(ctx, parse(t, "type: Button\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestError_Format(t *testing.T) {
	err := ErrValueConversion.
		At(markup.Position{Line: 3, Column: 9}).
		Detail("%q to %s", "x", "Double").
		Wrap(errors.New("invalid syntax"))

	assert.Equal(t, `3:9: unable to convert property value: "x" to Double: invalid syntax`, err.Error())
	assert.ErrorIs(t, err, ErrValueConversion)
	assert.NotErrorIs(t, err, ErrMissingPropertyOrPath)
	assert.Equal(t, "ValueConversionError", err.Kind().String())
	assert.Equal(t, "ErrorKind(42)", ErrorKind(42).String())

	v := err.LogValue()
	assert.Contains(t, v.String(), "kind=ValueConversionError")
}

func TestPipeline_DefaultTablesAgree(t *testing.T) {
	const doc = `type: Style
props:
  Selector: Button
children:
  - type: Setter
    props:
      Value: 42
`

	tree, err := markup.Parse(context.Background(), "test.yaml", []byte(doc))
	require.NoError(t, err)
	require.Same(t, typesys.Default(), tree.Types)

	p, err := New(typesys.Default())
	require.NoError(t, err)
	require.ErrorIs(t, p.Run(context.Background(), tree), ErrMissingPropertyOrPath)
}

func TestPipeline_RejectsForeignTable(t *testing.T) {
	tree := parse(t, `type: Style
props:
  Selector: Button
children:
  - type: Setter
    props:
      Property: Width
      Value: 42
`)
	before := tree.Clone()

	p, err := New(typesys.Builtin())
	require.NoError(t, err)

	err = p.Run(context.Background(), tree)
	require.ErrorIs(t, err, typesys.ErrTableMismatch)
	assert.Equal(t, before.Len(), tree.Len(), "rejected tree is left untouched")
}
