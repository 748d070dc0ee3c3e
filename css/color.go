package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color with components in 0..1 range, which is how design
// documents store paints.
type Color struct {
	R, G, B, A float64
}

var namedColors = map[string]Color{
	"black":       {0, 0, 0, 1},
	"white":       {1, 1, 1, 1},
	"red":         {1, 0, 0, 1},
	"green":       {0, 128.0 / 255, 0, 1},
	"blue":        {0, 0, 1, 1},
	"gray":        {128.0 / 255, 128.0 / 255, 128.0 / 255, 1},
	"grey":        {128.0 / 255, 128.0 / 255, 128.0 / 255, 1},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb(), rgba() and a
// few named colors.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunc(s)
	}
	return Color{}, fmt.Errorf("unsupported color %q", s)
}

func parseHexColor(s string) (Color, error) {
	alpha := 1.0
	hex := s[1:]
	switch len(hex) {
	case 4:
		a, err := strconv.ParseUint(strings.Repeat(hex[3:], 2), 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:3]
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

func parseRGBFunc(s string) (Color, error) {
	open, close := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || close < open {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	args := strings.FieldsFunc(s[open+1:close], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return Color{}, fmt.Errorf("bad color %q", s)
	}
	var comps [4]float64
	comps[3] = 1
	for i, a := range args {
		pct := strings.HasSuffix(a, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return Color{}, fmt.Errorf("bad color %q: %w", s, err)
		}
		switch {
		case pct:
			f /= 100
		case i < 3:
			f /= 255
		}
		comps[i] = math.Max(0, math.Min(1, f))
	}
	return Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// String formats color for CSS output: hex when opaque, rgba() otherwise.
func (c Color) String() string {
	if c.A >= 1 {
		return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", channel(c.R), channel(c.G), channel(c.B), formatNumber(c.A))
}

// WithAlpha returns color with alpha multiplied by opacity.
func (c Color) WithAlpha(opacity float64) Color {
	c.A *= opacity
	return c
}

func channel(v float64) int {
	return int(math.Round(v * 255))
}
