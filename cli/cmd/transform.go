package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/stylec/emit"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/transform"
	"github.com/ardnew/stylec/typesys"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatDump = "dump"
	FormatIL   = "il"
)

// Transform compiles style documents and prints the result.
type Transform struct {
	Documents []string `arg:"" help:"Style document file(s) or '-' for stdin" name:"document" optional:""`

	Format string `default:"text" enum:"text,yaml,json,dump,il" help:"Output format"                              short:"f"`
	Indent int    `default:"2"                                  help:"Indent width for YAML and JSON output"      short:"i"`
	Jobs   int    `                                             help:"Maximum documents compiled concurrently (default: CPU count)" short:"j"`
	Watch  bool   `                                             help:"Recompile documents when they change"       short:"w"`
	Parse  bool   `                                             help:"Print documents as parsed, without passes"`
}

// Run executes the transform command.
func (t *Transform) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := t.compiler(ctx)
	if err != nil {
		return err
	}

	sources := uniqueSources(t.Documents)
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	out := outputFrom(ctx)

	results, err := c.compileAll(ctx, sources, t.Jobs)
	if err != nil {
		return err
	}

	for i, src := range sources {
		if err := c.write(out, src, results[i], len(sources) > 1); err != nil {
			return err
		}
	}

	if !t.Watch {
		return nil
	}

	return c.watch(ctx, out, sources)
}

func (t *Transform) compiler(ctx context.Context) (*compiler, error) {
	types, err := loadTypes(ctx)
	if err != nil {
		return nil, err
	}

	logger := log.With(slog.String("command", "transform"))

	c := &compiler{
		types:  types,
		format: t.Format,
		indent: t.Indent,
		logger: logger,
	}

	if !t.Parse {
		if c.pipeline, err = transform.New(types, transform.WithLogger(logger)); err != nil {
			return nil, ErrLoadTypes.Wrap(err)
		}
	}

	if t.Format == FormatIL {
		if c.emitter, err = emit.New(types, emit.WithLogger(logger)); err != nil {
			return nil, ErrLoadTypes.Wrap(err)
		}
	}

	return c, nil
}

// compiler turns documents into formatted output. It is safe for concurrent
// use.
type compiler struct {
	types    *typesys.Table
	pipeline *transform.Pipeline
	emitter  *emit.Emitter
	format   string
	indent   int
	logger   log.Logger
}

// compileAll compiles sources with at most jobs running at once. Results are
// indexed like sources. The first failure cancels the rest.
func (c *compiler) compileAll(ctx context.Context, sources []string, jobs int) ([][]byte, error) {
	results := make([][]byte, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, src := range sources {
		g.Go(func() error {
			out, err := c.compile(ctx, src)
			if err != nil {
				return err
			}

			results[i] = out

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// compile reads, parses, transforms and formats a single document.
func (c *compiler) compile(ctx context.Context, src string) ([]byte, error) {
	name := documentName(src)

	data, err := readSource(src)
	if err != nil {
		return nil, ErrReadDocument.With(slog.String("document", name)).Wrap(err)
	}

	tree, err := markup.Parse(ctx, name, data,
		markup.WithTypes(c.types),
		markup.WithLogger(c.logger),
	)
	if err != nil {
		return nil, ErrCompile.With(slog.String("document", name)).Wrap(err)
	}

	if c.pipeline != nil {
		if err := c.pipeline.Run(ctx, tree); err != nil {
			return nil, ErrCompile.With(slog.String("document", name)).Wrap(err)
		}
	}

	var buf bytes.Buffer

	switch c.format {
	case FormatText:
		err = tree.FormatText(ctx, &buf)
	case FormatYAML:
		err = tree.FormatYAML(ctx, &buf, c.indent)
	case FormatJSON:
		err = tree.FormatJSON(ctx, &buf, c.indent)
	case FormatDump:
		err = tree.FormatDump(ctx, &buf)
	case FormatIL:
		var prog *emit.Program

		if prog, err = c.emitter.Emit(ctx, tree); err == nil {
			_, err = prog.WriteTo(&buf)
		}
	default:
		err = ErrUnknownFormat.With(slog.String("format", c.format))
	}

	if err != nil {
		return nil, ErrCompile.With(slog.String("document", name)).Wrap(err)
	}

	c.logger.DebugContext(ctx, "compiled document",
		slog.String("document", name),
		slog.Int("bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// write prints one compiled document, preceded by a separator naming it when
// several documents are printed.
func (c *compiler) write(w io.Writer, src string, data []byte, many bool) error {
	if many {
		var err error

		switch c.format {
		case FormatYAML:
			_, err = fmt.Fprintf(w, "--- # %s\n", documentName(src))
		case FormatJSON:
		default:
			_, err = fmt.Fprintf(w, "# %s\n", documentName(src))
		}

		if err != nil {
			return err
		}
	}

	_, err := w.Write(data)

	return err
}

// watch recompiles and prints each document when its file changes, until
// ctx is done. Compile errors are logged and do not stop watching. The
// parent directories are watched so that editors replacing files by rename
// are noticed.
func (c *compiler) watch(ctx context.Context, out io.Writer, sources []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	files := map[string]string{}
	dirs := map[string]bool{}

	for _, src := range sources {
		if src == stdinSource {
			c.logger.WarnContext(ctx, "stdin is not watched")

			continue
		}

		abs, err := filepath.Abs(src)
		if err != nil {
			return ErrWatch.With(slog.String("document", src)).Wrap(err)
		}

		files[abs] = src

		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
			}

			dirs[dir] = true
		}
	}

	if len(files) == 0 {
		return nil
	}

	c.logger.InfoContext(ctx, "watching documents", slog.Int("count", len(files)))

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			c.logger.WarnContext(ctx, "watch error", slog.Any("error", err))

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			src, tracked := files[filepath.Clean(ev.Name)]
			if !tracked || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			c.logger.DebugContext(ctx, "document changed",
				slog.String("document", src),
				slog.String("op", ev.Op.String()),
			)

			data, err := c.compile(ctx, src)
			if err != nil {
				c.logger.ErrorContext(ctx, "compile failed", slog.Any("error", err))

				continue
			}

			if err := c.write(out, src, data, true); err != nil {
				return err
			}
		}
	}
}

func documentName(src string) string {
	if src == stdinSource {
		return "<stdin>"
	}

	return src
}
