package markup

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
)

// Error represents a markup error with an optional source position and
// structured logging attributes.
type Error struct {
	msg   string
	err   error
	pos   Position
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<pos>: <msg>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 3)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is matches sentinels by message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// Pos returns the source position of the error, if any.
func (e *Error) Pos() Position { return e.pos }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("pos", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// At creates a new Error located at pos.
func (e *Error) At(pos Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := *e
	c.attrs = newAttrs

	return &c
}

var (
	ErrParse            = NewError("parse document")
	ErrEmptyDocument    = NewError("empty document")
	ErrMultipleDocument = NewError("multiple documents in one source")
	ErrExpectedObject   = NewError("expected object mapping")
	ErrMissingType      = NewError("object has no type")
	ErrUnknownType      = NewError("unknown type")
	ErrUnknownKey       = NewError("unknown object key")
	ErrInvalidValue     = NewError("invalid property value")
	ErrInvalidNode      = NewError("invalid node")
	ErrNotChild         = NewError("node is not a child of parent")
	ErrSharedNode       = NewError("node reachable more than once")
	ErrParentMismatch   = NewError("parent link does not match tree")
	ErrFormat           = NewError("format tree")
)

// Snippet renders the source line containing pos with a caret under the
// column, or "" if pos is outside source.
//
//	  3 | Value: abc
//	           ^
func Snippet(source []byte, pos Position) string {
	lines := bytes.Split(source, []byte("\n"))
	if !pos.IsValid() || pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimRight(string(lines[pos.Line-1]), "\r")

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)

	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
