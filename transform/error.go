package transform

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/stylec/markup"
)

// ErrorKind classifies a transform failure.
type ErrorKind int

const (
	TargetTypeUnresolved ErrorKind = iota + 1
	MissingPropertyOrPath
	InvalidPropertyValue
	PropertyPathUnresolved
	ValueConversion
	PropertyNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case TargetTypeUnresolved:
		return "TargetTypeUnresolved"
	case MissingPropertyOrPath:
		return "MissingPropertyOrPath"
	case InvalidPropertyValue:
		return "InvalidPropertyValue"
	case PropertyPathUnresolved:
		return "PropertyPathUnresolved"
	case ValueConversion:
		return "ValueConversionError"
	case PropertyNotFound:
		return "PropertyNotFound"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is a transform failure located at the offending node.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind   ErrorKind
	msg    string
	detail string
	pos    markup.Position
	err    error
	attrs  []slog.Attr
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Kind returns the failure classification.
func (e *Error) Kind() ErrorKind { return e.kind }

// Pos returns the source position of the offending node.
func (e *Error) Pos() markup.Position { return e.pos }

func (e *Error) Error() string {
	part := make([]string, 0, 4)

	if e.pos.IsValid() {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.detail != "" {
		part = append(part, e.detail)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.kind == e.kind
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)
	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
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
func (e *Error) At(pos markup.Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

// Detail creates a new Error with a formatted explanation.
func (e *Error) Detail(format string, args ...any) *Error {
	c := *e
	c.detail = fmt.Sprintf(format, args...)

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

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

var (
	ErrTargetTypeUnresolved = newError(TargetTypeUnresolved,
		"cannot determine setter target type")
	ErrMissingPropertyOrPath = newError(MissingPropertyOrPath,
		"setter without a property or property path is not valid")
	ErrInvalidPropertyValue = newError(InvalidPropertyValue,
		"setter property must be a string")
	ErrPropertyPathUnresolved = newError(PropertyPathUnresolved,
		"unable to get the property path property type")
	ErrValueConversion = newError(ValueConversion,
		"unable to convert property value")
	ErrPropertyNotFound = newError(PropertyNotFound,
		"setter property not found on target type")
)
