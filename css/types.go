package css

import (
	"strings"
	"unicode"
)

// Value represents a single parsed CSS value component.
type Value struct {
	Raw     string  // Original text (e.g., "12px", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "px", "%", "em", "deg", ...
	Keyword string  // Keyword or function text if applicable
	Kind    ValueKind
}

// ValueKind tells what sort of token the value came from.
type ValueKind int

const (
	KindKeyword ValueKind = iota
	KindNumber
	KindDimension
	KindPercentage
	KindHash
	KindFunction
	KindString
)

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumber || v.Kind == KindDimension || v.Kind == KindPercentage
}

// IsPixels returns true for "Npx" and unitless zero.
func (v Value) IsPixels() bool {
	switch v.Kind {
	case KindDimension:
		return v.Unit == "px"
	case KindNumber:
		return v.Value == 0
	}
	return false
}

// LayoutMode is the flex direction of a container.
type LayoutMode int

const (
	LayoutNone LayoutMode = iota
	LayoutRow
	LayoutColumn
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutRow:
		return "row"
	case LayoutColumn:
		return "column"
	default:
		return "none"
	}
}

// Align is used for both main and cross axis alignment.
type Align int

const (
	AlignUnset Align = iota
	AlignStart
	AlignCenter
	AlignEnd
	AlignSpaceBetween
	AlignStretch
	AlignBaseline
)

func (a Align) String() string {
	switch a {
	case AlignStart:
		return "flex-start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "flex-end"
	case AlignSpaceBetween:
		return "space-between"
	case AlignStretch:
		return "stretch"
	case AlignBaseline:
		return "baseline"
	default:
		return ""
	}
}

// Padding in pixels, one per side.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// IsZero returns true when all sides are zero.
func (p Padding) IsZero() bool {
	return p.Top == 0 && p.Right == 0 && p.Bottom == 0 && p.Left == 0
}

// Border is a uniform border.
type Border struct {
	Width  float64
	Color  *Color
	Dashed bool
}

// Shadow is a single drop shadow.
type Shadow struct {
	X, Y, Blur, Spread float64
	Color              Color
}

// LineHeight keeps either pixel or unitless (multiplier) line height.
type LineHeight struct {
	Value    float64
	Unitless bool
}

// Style is the structured form of inline style declarations. Pointer fields
// are nil when the declaration was absent.
type Style struct {
	// position
	Absolute bool
	Relative bool
	X, Y     *float64

	// size
	Width, Height       *float64
	MinWidth, MaxWidth   *float64
	MinHeight, MaxHeight *float64

	// paint
	Background   *Color
	Border       *Border
	BorderRadius *float64
	Round        bool // border-radius: 50%, only produced for ellipses
	ClipContent  bool
	Opacity      *float64
	Rotation     *float64 // degrees, CSS direction (clockwise)
	Shadows      []Shadow

	// layout
	Layout         LayoutMode
	Gap            *float64
	Padding        *Padding
	JustifyContent Align
	AlignItems     Align

	// typography
	Color          *Color
	FontFamily     string
	FontSize       *float64
	FontWeight     int
	LineHeight     *LineHeight
	LetterSpacing  *float64
	TextAlign      string
	TextDecoration string
	TextTransform  string
	Ellipsis       bool
	MaxLines       int
	PreWrap        bool
}

// IsZero reports whether no declaration was captured.
func (s Style) IsZero() bool {
	return Compose(s) == ""
}

// HasTypography reports whether any text related declaration is present.
func (s Style) HasTypography() bool {
	return s.Color != nil || s.FontFamily != "" || s.FontSize != nil || s.FontWeight != 0 ||
		s.LineHeight != nil || s.LetterSpacing != nil || s.TextAlign != "" ||
		s.TextDecoration != "" || s.TextTransform != "" || s.Ellipsis
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// splitNumber extracts numeric value and unit from dimension text.
func splitNumber(s string) (string, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	return s[:numEnd], strings.ToLower(s[numEnd:])
}
