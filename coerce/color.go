package coerce

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 32-bit ARGB color.
type Color struct {
	A, R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

var namedColors = map[string]Color{
	"transparent": {0x00, 0xff, 0xff, 0xff},
	"black":       {0xff, 0x00, 0x00, 0x00},
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0xff, 0x00, 0x00},
	"green":       {0xff, 0x00, 0x80, 0x00},
	"lime":        {0xff, 0x00, 0xff, 0x00},
	"blue":        {0xff, 0x00, 0x00, 0xff},
	"yellow":      {0xff, 0xff, 0xff, 0x00},
	"orange":      {0xff, 0xff, 0xa5, 0x00},
	"purple":      {0xff, 0x80, 0x00, 0x80},
	"gray":        {0xff, 0x80, 0x80, 0x80},
	"silver":      {0xff, 0xc0, 0xc0, 0xc0},
	"navy":        {0xff, 0x00, 0x00, 0x80},
	"teal":        {0xff, 0x00, 0x80, 0x80},
}

// ParseColor parses "#RGB", "#ARGB", "#RRGGBB", "#AARRGGBB" or a color name.
func ParseColor(s string) (Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		if c, ok := namedColors[strings.ToLower(s)]; ok {
			return c, nil
		}

		return Color{}, ErrSyntax
	}

	switch len(hex) {
	case 3, 4:
		// Each digit doubles: #f80 is #ff8800.
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}

		hex = b.String()
	case 6, 8:
	default:
		return Color{}, ErrSyntax
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, ErrSyntax
	}

	if len(hex) == 6 {
		v |= 0xff << 24
	}

	return Color{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}
