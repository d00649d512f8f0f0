package cmd

import (
	"log/slog"
	"slices"
	"strings"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// subjectKeys name the attributes that identify what an error is about.
// Their values are included in the error message.
var subjectKeys = []string{"document", "file", "type", "format"}

func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	var suggest string

	for _, a := range e.attrs {
		switch {
		case a.Key == "suggest":
			suggest = a.Value.String()
		case slices.Contains(subjectKeys, a.Key):
			part = append(part, a.Value.String())
		}
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")
	if suggest != "" {
		s += " (did you mean " + suggest + "?)"
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

var (
	ErrYAMLMarshal   = NewError("marshal YAML")
	ErrWriteConfig   = NewError("write configuration file")
	ErrFileExists    = NewError("file exists (use --force to overwrite)")
	ErrLoadTypes     = NewError("load type table")
	ErrReadDocument  = NewError("read document")
	ErrCompile       = NewError("compile document")
	ErrUnknownFormat = NewError("unknown output format")
	ErrUnknownType   = NewError("unknown type")
	ErrWatch         = NewError("watch documents")
)
