package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/transform"
	"github.com/ardnew/stylec/typesys"
)

func newSession(t *testing.T, target string) *Session {
	t.Helper()

	s, err := NewSession(typesys.Default(), target, log.Default())
	require.NoError(t, err)

	return s
}

func TestSession_Eval(t *testing.T) {
	s := newSession(t, "Button")

	for _, input := range []string{
		"Property: Width, Value: 42",
		"  {Property: Width, Value: 42}",
	} {
		res, err := s.Eval(context.Background(), input)
		require.NoError(t, err, input)

		require.NotEmpty(t, res.Tree)
		assert.Equal(t, "Setter", res.Tree[0])
		assert.Contains(t, res.String(), "property Control.Width : Double")

		require.NotEmpty(t, res.Code)
		assert.Equal(t, "newobj Setter", res.Code[0])
		assert.Contains(t, res.Code, "ldc 42 : Double")
		assert.NotContains(t, res.Code, "newobj Style", "listing starts at the setter")
	}
}

func TestSession_EvalPropertyPath(t *testing.T) {
	s := newSession(t, "Button")

	res, err := s.Eval(context.Background(), "PropertyPath: (Grid.Row), Value: 3")
	require.NoError(t, err)
	assert.Contains(t, res.String(), "path (Grid.Row) : Int32")
}

func TestSession_EvalErrors(t *testing.T) {
	s := newSession(t, "Button")
	ctx := context.Background()

	_, err := s.Eval(ctx, "Property: Width, Value: [1")
	require.ErrorIs(t, err, ErrInput)

	_, err = s.Eval(ctx, "Value: 1")
	require.ErrorIs(t, err, transform.ErrMissingPropertyOrPath)

	input := "Property: Widht, Value: 1"

	_, err = s.Eval(ctx, input)
	require.ErrorIs(t, err, transform.ErrPropertyNotFound)
	assert.Equal(t, strings.Index(input, "Widht")+1, s.Column(input, err))

	braced := "  {Property: Widht, Value: 1}"

	_, err = s.Eval(ctx, braced)
	require.Error(t, err)
	assert.Equal(t, strings.Index(braced, "Widht")+1, s.Column(braced, err))

	assert.Zero(t, s.Column(input, ErrInput))
}

func TestSession_SetTarget(t *testing.T) {
	s := newSession(t, "Control")
	assert.Equal(t, "Control", s.Target().Name)

	require.NoError(t, s.SetTarget("Border"))
	assert.Equal(t, "Border", s.Target().Name)

	err := s.SetTarget("Buton")
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "did you mean Button?")
	assert.Equal(t, "Border", s.Target().Name, "failed change keeps target")

	_, err = NewSession(typesys.Default(), "Nope", log.Default())
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestSession_Properties(t *testing.T) {
	s := newSession(t, "Button")

	names := map[string]int{}
	for _, p := range s.Properties(nil) {
		names[p.Name]++
	}

	assert.Equal(t, 1, names["Width"], "inherited from Control")

	for name, n := range names {
		assert.Equal(t, 1, n, "%s listed once", name)
	}

	grid := s.Type("Grid")
	require.NotNil(t, grid)

	var attached []string
	for _, p := range s.Properties(grid) {
		attached = append(attached, p.Name)
	}

	assert.Contains(t, attached, "Row")
}
