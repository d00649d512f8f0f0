package typesys

import (
	"log/slog"
	"strings"
)

// Error represents a type system error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel with the same message, so that
// errors derived with [Error.With] or [Error.Wrap] still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

var (
	ErrTypeNotFound      = NewError("type not found")
	ErrPropertyNotFound  = NewError("property not found")
	ErrDuplicateType     = NewError("duplicate type")
	ErrDuplicateProperty = NewError("duplicate property")
	ErrInvalidKind       = NewError("invalid type kind")
	ErrDecodeTable       = NewError("decode type table")
	ErrWellKnownMissing  = NewError("well-known type missing")
	ErrInheritanceCycle  = NewError("inheritance cycle")
	ErrSealedTable       = NewError("built-in type table is read-only")
	ErrTableMismatch     = NewError("document was loaded with a different type table")
)
