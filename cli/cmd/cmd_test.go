package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gaugeTable = `types:
  - name: Gauge
    base: Control
    properties:
      - { name: Level, type: Double }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestUniqueSources(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a.yaml", "a")
	b := writeFile(t, dir, "b.yaml", "b")

	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(a, link))

	rel, err := filepath.Rel(".", a)
	if err != nil {
		rel = a
	}

	missing := filepath.Join(dir, "missing.yaml")

	tests := []struct {
		name    string
		sources []string
		want    []string
	}{
		{name: "empty", sources: nil, want: []string{}},
		{name: "distinct", sources: []string{a, b}, want: []string{a, b}},
		{name: "symlink", sources: []string{a, link, b}, want: []string{a, b}},
		{name: "first_spelling_kept", sources: []string{link, a}, want: []string{link}},
		{name: "relative", sources: []string{a, rel}, want: []string{a}},
		{name: "stdin_last", sources: []string{stdinSource, a, stdinSource}, want: []string{a, stdinSource}},
		{name: "missing_kept", sources: []string{missing, a}, want: []string{missing, a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueSources(tt.sources))
		})
	}
}

func TestLoadTypes(t *testing.T) {
	ctx := context.Background()

	types, err := loadTypes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, types.Type("Button"))
	assert.Nil(t, types.Type("Gauge"))

	path := writeFile(t, t.TempDir(), "gauge.yaml", gaugeTable)

	types, err = loadTypes(WithTypeTables(ctx, []string{path}))
	require.NoError(t, err)
	require.NotNil(t, types.Type("Gauge"))
	assert.NotNil(t, types.Type("Button"), "built-in types stay loaded")

	bad := writeFile(t, t.TempDir(), "bad.yaml", "types: [")

	_, err = loadTypes(WithTypeTables(ctx, []string{bad}))
	require.ErrorIs(t, err, ErrLoadTypes)
}

func TestOutputFrom(t *testing.T) {
	assert.Equal(t, os.Stdout, outputFrom(context.Background()))

	var buf bytes.Buffer
	assert.Same(t, &buf, outputFrom(WithOutput(context.Background(), &buf)))
}

func TestKongContextFrom(t *testing.T) {
	assert.Nil(t, kongContextFrom(context.Background()))
	assert.Nil(t, kongContextFrom(WithContext(context.Background(), nil)))
}
