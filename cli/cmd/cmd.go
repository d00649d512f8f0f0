package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stylec/typesys"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	typeTablesKey struct{}
	outputKey     struct{}
)

// WithTypeTables returns a new context.Context carrying the paths of type
// tables loaded over the built-in table by commands that need types.
func WithTypeTables(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, typeTablesKey{}, paths)
}

// loadTypes returns the built-in type table extended with every table
// stored by WithTypeTables, in order.
func loadTypes(ctx context.Context) (*typesys.Table, error) {
	types := typesys.Builtin()

	paths, _ := ctx.Value(typeTablesKey{}).([]string)
	for _, path := range paths {
		if err := types.LoadFile(path); err != nil {
			return nil, ErrLoadTypes.With(slog.String("file", path)).Wrap(err)
		}
	}

	return types, nil
}

// WithOutput returns a new context.Context whose commands write results to
// w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// uniqueSources returns the documents named by sources with duplicates
// removed, comparing device/inode pairs after resolving symlinks. Each
// document keeps the spelling of its first occurrence. Every "-" (or a name
// referring to stdin) collapses to a single stdinSource placed last.
// Sources that cannot be resolved are kept so that reading them reports the
// error.
func uniqueSources(sources []string) []string {
	out := make([]string, 0, len(sources))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, hasStdinKey := makeFileKey(stdinInfo)

	var stdin bool

	for _, src := range sources {
		if src == stdinSource {
			stdin = true

			continue
		}

		key, ok := resolveFileKey(src)
		if !ok {
			out = append(out, src)

			continue
		}

		if hasStdinKey && key == stdinKey {
			stdin = true

			continue
		}

		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, src)
	}

	if stdin {
		out = append(out, stdinSource)
	}

	return out
}

// resolveFileKey returns the key of the file at path after resolving it to
// an absolute path and following symlinks.
func resolveFileKey(path string) (fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// readSource reads the whole document named src, or stdin for stdinSource.
func readSource(src string) ([]byte, error) {
	if src == stdinSource {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(src)
}
