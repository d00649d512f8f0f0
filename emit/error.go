package emit

import (
	"log/slog"
	"strings"

	"github.com/ardnew/stylec/markup"
)

// Error represents an emission error with an optional source position and
// structured logging attributes.
type Error struct {
	msg   string
	err   error
	pos   markup.Position
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
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

func (e *Error) Pos() markup.Position { return e.pos }

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

func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

func (e *Error) At(pos markup.Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := *e
	c.attrs = newAttrs

	return &c
}

var (
	ErrUnresolvedType     = NewError("object type is not resolved")
	ErrUnresolvedProperty = NewError("assignment property is not resolved")
	ErrUnresolvedSetter   = NewError("setter does not have exactly one resolved property")
	ErrNoApplicableSetter = NewError("no setter overload accepts value")
	ErrUnsupportedNode    = NewError("unsupported node")
)
