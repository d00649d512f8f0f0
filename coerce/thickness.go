package coerce

import (
	"strconv"
	"strings"
)

// Thickness is a set of four edge lengths.
type Thickness struct {
	Left, Top, Right, Bottom float64
}

func (t Thickness) String() string {
	parts := []float64{t.Left, t.Top, t.Right, t.Bottom}
	out := make([]string, len(parts))

	for i, p := range parts {
		out[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}

	return strings.Join(out, ",")
}

// ParseThickness parses one uniform length, two lengths (horizontal,
// vertical) or four lengths (left, top, right, bottom), separated by commas
// or spaces.
func ParseThickness(s string) (Thickness, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	v := make([]float64, len(fields))

	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Thickness{}, ErrSyntax
		}

		v[i] = n
	}

	switch len(v) {
	case 1:
		return Thickness{v[0], v[0], v[0], v[0]}, nil
	case 2:
		return Thickness{v[0], v[1], v[0], v[1]}, nil
	case 4:
		return Thickness{v[0], v[1], v[2], v[3]}, nil
	default:
		return Thickness{}, ErrSyntax
	}
}
