package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles applied by the pretty handlers. Rendering degrades to plain text
// when the output is not a color terminal.
var (
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	nullStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	messageStyle  = lipgloss.NewStyle().Bold(true)
)

func levelStyle(level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	case level >= slog.LevelWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	case level >= slog.LevelInfo:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	}
}

// prettyHandler holds the state shared by both pretty handlers.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// derive returns a copy of h with additional attributes or a nested group.
func (h *prettyHandler) derive(attrs []slog.Attr, group string) prettyHandler {
	d := prettyHandler{
		opts:   h.opts,
		mu:     h.mu,
		w:      h.w,
		attrs:  append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...),
		groups: h.groups[:len(h.groups):len(h.groups)],
	}

	if group != "" {
		d.groups = append(d.groups, group)
	}

	return d
}

// qualify prefixes attribute keys with the open group names.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

// record collects the attributes of r in output order, after ReplaceAttr.
func (h *prettyHandler) record(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs)+4)

	if !r.Time.IsZero() {
		out = append(out, slog.Time(slog.TimeKey, r.Time))
	}

	out = append(out, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	out = append(out, slog.String(slog.MessageKey, r.Message))
	out = append(out, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		out = append(out, h.qualify([]slog.Attr{a})...)

		return true
	})

	if h.opts.ReplaceAttr == nil {
		return out
	}

	kept := out[:0]

	for _, a := range out {
		a = h.opts.ReplaceAttr(nil, a)
		if a.Key != "" {
			kept = append(kept, a)
		}
	}

	return kept
}

func (h *prettyHandler) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler implements a colorized text handler for log messages.
type prettyTextHandler struct{ prettyHandler }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range h.record(r) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteByte('=')

		switch a.Key {
		case slog.LevelKey:
			buf.WriteString(levelStyle(r.Level).Render(a.Value.String()))
		case slog.MessageKey:
			buf.WriteString(messageStyle.Render(a.Value.String()))
		default:
			buf.WriteString(renderValue(a.Value))
		}
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.derive(attrs, "")}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.derive(nil, name)}
}

// prettyJSONHandler implements a pretty-printed JSON handler for log messages.
type prettyJSONHandler struct{ prettyHandler }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{")

	for i, a := range h.record(r) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(keyStyle.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(levelStyle(r.Level).Render(strconv.Quote(a.Value.String())))
		} else {
			buf.WriteString(renderValue(a.Value))
		}
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.derive(attrs, "")}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.derive(nil, name)}
}

// renderValue styles a value according to its kind.
func renderValue(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numberStyle.Render(v.String())

	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")

	case slog.KindDuration:
		return durationStyle.Render(v.Duration().String())

	case slog.KindTime:
		return timeStyle.Render(v.Time().String())

	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, keyStyle.Render(a.Key)+"="+renderValue(a.Value))
		}

		return "{" + strings.Join(parts, " ") + "}"

	default:
		if v.Any() == nil {
			return nullStyle.Render("null")
		}

		return stringStyle.Render(fmt.Sprint(v.Any()))
	}
}
