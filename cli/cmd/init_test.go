package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type initCLI struct {
	Verbose bool     `help:"Enable verbose output"`
	Output  string   `help:"Output file"`
	Count   int      `help:"Number of items"`
	Tags    []string `help:"Tags"`
	Secret  string   `hidden:""`

	Init Init `cmd:""`
	Other struct {
		Depth int `default:"3"`
	} `cmd:""`
}

func parseInit(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	require.NoError(t, err)

	ktx, err := parser.Parse(args)
	require.NoError(t, err)

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   bool // pre-existing file
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, setup: true},
		{name: "fail_without_force", setup: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup {
				require.NoError(t, os.WriteFile(confPath, []byte("existing: true\n"), 0o600))
			}

			ctx := parseInit(t, confPath, "init")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				data, err := os.ReadFile(confPath)
				require.NoError(t, err)
				assert.Equal(t, "existing: true\n", string(data))

				return
			}

			require.NoError(t, err)

			info, err := os.Stat(confPath)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
}

func TestInitValues(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "config.yaml")
	ctx := parseInit(t, confPath,
		"--verbose", "--output=out.txt", "--count=5", "--tags=a,b", "init")

	require.NoError(t, (&Init{}).Run(ctx))

	data, err := os.ReadFile(confPath)
	require.NoError(t, err)

	var got yaml.MapSlice
	require.NoError(t, yaml.Unmarshal(data, &got))

	keys := make([]string, len(got))
	values := map[string]any{}

	for i, item := range got {
		keys[i] = item.Key.(string)
		values[keys[i]] = item.Value
	}

	// Application flags come first, then other commands' flags. The help
	// flag, hidden flags and the selected command's own flags are omitted.
	assert.Equal(t, []string{"verbose", "output", "count", "tags", "depth"}, keys)
	assert.Equal(t, true, values["verbose"])
	assert.Equal(t, "out.txt", values["output"])
	assert.EqualValues(t, 5, values["count"])
	assert.Equal(t, []any{"a", "b"}, values["tags"])
	assert.EqualValues(t, 3, values["depth"])
}

func TestInitFlagValue(t *testing.T) {
	t.Parallel()

	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "bool", in: true, want: true},
		{name: "int", in: 7, want: 7},
		{name: "string", in: "x", want: "x"},
		{name: "empty_string", in: "", want: nil},
		{name: "strings", in: []string{"a"}, want: []string{"a"}},
		{name: "empty_strings", in: []string{}, want: nil},
		{name: "named_string", in: level("debug"), want: "debug"},
		{name: "empty_named_string", in: level(""), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, flagValue(tt.in))
		})
	}
}
