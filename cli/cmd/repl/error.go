package repl

import (
	"log/slog"
	"strings"
)

// Error is a REPL failure with structured logging support.
type Error struct {
	msg     string
	suggest string
	err     error
	attrs   []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	for _, a := range e.attrs {
		if a.Key == "type" || a.Key == "command" {
			part = append(part, a.Value.String())
		}
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")
	if e.suggest != "" {
		s += " (did you mean " + e.suggest + "?)"
	}

	return s
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.suggest != "" {
		attrs = append(attrs, slog.String("suggest", e.suggest))
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

// Suggest returns a copy of e proposing name as a correction.
func (e *Error) Suggest(name string) *Error {
	c := *e
	c.suggest = name

	return &c
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(append([]slog.Attr(nil), e.attrs...), attrs...)

	return &c
}

// Sentinel errors.
var (
	ErrOutOfBounds     = NewError("index out of range")
	ErrUnknownType     = NewError("unknown type")
	ErrUnknownCommand  = NewError("unknown command (try 'help')")
	ErrMissingArgument = NewError("missing argument")
	ErrInput           = NewError("invalid setter")
)
