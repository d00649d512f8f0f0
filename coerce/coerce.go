package coerce

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// Constant is the typed value of a literal.
type Constant struct {
	// Type is the static type of Value.
	Type  *typesys.Type
	Value any
	// Text is the literal as written.
	Text string
	Null bool
}

func (c Constant) String() string {
	if c.Null {
		return "null"
	}

	switch v := c.Value.(type) {
	case string:
		return strconv.Quote(v)
	case *typesys.Type:
		return "typeof(" + v.Name + ")"
	default:
		return fmtValue(v)
	}
}

func fmtValue(v any) string {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case interface{ String() string }:
		return v.String()
	default:
		return "?"
	}
}

// Coercer statically converts literal text to a constant of a given type.
type Coercer interface {
	Coerce(text string, typ *typesys.Type) (Constant, error)
}

// Static is the [Coercer] backed by a type table's converters.
// It is safe for concurrent use.
type Static struct {
	types *typesys.Table

	mu       sync.Mutex
	programs map[string]*vm.Program
}

// New returns a Static coercer for types. The table resolves the String type
// and type-name literals.
func New(types *typesys.Table) *Static {
	return &Static{types: types, programs: map[string]*vm.Program{}}
}

// Coerce converts text to a constant of typ.
func (s *Static) Coerce(text string, typ *typesys.Type) (Constant, error) {
	if typ == nil {
		return Constant{}, ErrNoConverter.With(slog.String("type", typ.String()))
	}

	trimmed := strings.TrimSpace(text)

	if trimmed == markup.NullText {
		if !typ.AcceptsNull() {
			return Constant{}, ErrNull.With(slog.String("type", typ.Name))
		}

		return Constant{Type: typ, Text: text, Null: true}, nil
	}

	c := Constant{Type: typ, Text: text}

	var err error

	switch typ.Converter {
	case "string":
		c.Value = text
	case "bool":
		c.Value, err = parseBool(trimmed)
	case "int":
		c.Value, err = parseInt(trimmed)
	case "float":
		c.Value, err = parseFloat(trimmed)
	case "enum":
		c.Value, err = parseEnum(trimmed, typ.Enum)
	case "color":
		c.Value, err = ParseColor(trimmed)
	case "thickness":
		c.Value, err = ParseThickness(trimmed)
	case "type":
		c.Value, err = s.parseType(trimmed)
	case "":
		str := s.types.Type(typesys.StringName)
		if str == nil || !typ.IsAssignableFrom(str) {
			return Constant{}, ErrNoConverter.With(slog.String("type", typ.Name))
		}

		c.Type, c.Value = str, text
	default:
		return Constant{}, ErrNoConverter.With(
			slog.String("type", typ.Name),
			slog.String("converter", typ.Converter),
		)
	}

	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return Constant{}, ce.With(
				slog.String("type", typ.Name),
				slog.String("text", text),
			)
		}

		return Constant{}, err
	}

	if err := s.check(typ, c); err != nil {
		return Constant{}, err
	}

	return c, nil
}

// constraintEnv is the environment of a constraint expression.
type constraintEnv struct {
	Value any    `expr:"value"`
	Text  string `expr:"text"`
}

func (s *Static) program(src string) (*vm.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.programs[src]; ok {
		return p, nil
	}

	p, err := expr.Compile(src, expr.Env(constraintEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidConstraint.Wrap(err).With(slog.String("constraint", src))
	}

	s.programs[src] = p

	return p, nil
}

func (s *Static) check(typ *typesys.Type, c Constant) error {
	if typ.Constraint == "" || c.Null {
		return nil
	}

	p, err := s.program(typ.Constraint)
	if err != nil {
		return err
	}

	out, err := expr.Run(p, constraintEnv{Value: c.Value, Text: c.Text})
	if err != nil {
		return ErrInvalidConstraint.Wrap(err).With(slog.String("constraint", typ.Constraint))
	}

	if ok, _ := out.(bool); !ok {
		return ErrConstraint.With(
			slog.String("type", typ.Name),
			slog.String("constraint", typ.Constraint),
			slog.String("text", c.Text),
		)
	}

	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, ErrSyntax
	}
}

// parseInt reads a decimal Int32. Leading zeros are not an octal prefix.
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrRange
		}

		return 0, ErrSyntax
	}

	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrRange
		}

		return 0, ErrSyntax
	}

	if math.IsNaN(f) && !strings.EqualFold(s, "nan") {
		return 0, ErrSyntax
	}

	return f, nil
}

func parseEnum(s string, names []string) (string, error) {
	for _, name := range names {
		if strings.EqualFold(s, name) {
			return name, nil
		}
	}

	return "", ErrSyntax.With(slog.String("expected", strings.Join(names, "|")))
}

func (s *Static) parseType(name string) (*typesys.Type, error) {
	if typ := s.types.Type(name); typ != nil {
		return typ, nil
	}

	return nil, ErrSyntax.With(slog.String("unknown", name))
}
