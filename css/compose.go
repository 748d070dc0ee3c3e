package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Compose produces inline declarations from Style. Group order is fixed:
// position, size, background, border, border-radius, overflow,
// opacity/rotation/effects, layout, box-sizing, typography. Generated pages are
// compared as text, so do not reorder.
func Compose(s Style) string {
	var b declBuilder

	// position
	switch {
	case s.Absolute:
		b.add("position", "absolute")
		if s.Y != nil {
			b.px("top", *s.Y)
		}
		if s.X != nil {
			b.px("left", *s.X)
		}
	case s.Relative:
		b.add("position", "relative")
	}

	// size
	b.pxPtr("width", s.Width)
	b.pxPtr("height", s.Height)
	b.pxPtr("min-width", s.MinWidth)
	b.pxPtr("max-width", s.MaxWidth)
	b.pxPtr("min-height", s.MinHeight)
	b.pxPtr("max-height", s.MaxHeight)

	// background
	if s.Background != nil {
		b.add("background-color", s.Background.String())
	}

	// stroke
	if s.Border != nil && s.Border.Width > 0 {
		style := "solid"
		if s.Border.Dashed {
			style = "dashed"
		}
		color := "#000000"
		if s.Border.Color != nil {
			color = s.Border.Color.String()
		}
		b.add("border", fmt.Sprintf("%spx %s %s", formatNumber(s.Border.Width), style, color))
	}

	// radius
	switch {
	case s.Round:
		b.add("border-radius", "50%")
	case s.BorderRadius != nil && *s.BorderRadius > 0:
		b.px("border-radius", *s.BorderRadius)
	}

	// overflow
	if s.ClipContent {
		b.add("overflow", "hidden")
	}

	// opacity, rotation, effects
	if s.Opacity != nil && *s.Opacity < 1 {
		b.add("opacity", formatNumber(*s.Opacity))
	}
	if s.Rotation != nil && *s.Rotation != 0 {
		b.add("transform", "rotate("+formatNumber(*s.Rotation)+"deg)")
	}
	if len(s.Shadows) > 0 {
		parts := make([]string, 0, len(s.Shadows))
		for _, sh := range s.Shadows {
			parts = append(parts, fmt.Sprintf("%spx %spx %spx %spx %s",
				formatNumber(sh.X), formatNumber(sh.Y), formatNumber(sh.Blur), formatNumber(sh.Spread), sh.Color.String()))
		}
		b.add("box-shadow", strings.Join(parts, ", "))
	}

	// layout
	if s.Layout != LayoutNone {
		b.add("display", "flex")
		b.add("flex-direction", s.Layout.String())
		b.pxPtr("gap", s.Gap)
	}
	if s.Padding != nil && !s.Padding.IsZero() {
		p := s.Padding
		b.add("padding", fmt.Sprintf("%spx %spx %spx %spx",
			formatNumber(p.Top), formatNumber(p.Right), formatNumber(p.Bottom), formatNumber(p.Left)))
	}
	if s.Layout != LayoutNone {
		if s.JustifyContent != AlignUnset {
			b.add("justify-content", s.JustifyContent.String())
		}
		if s.AlignItems != AlignUnset {
			b.add("align-items", s.AlignItems.String())
		}
	}

	// box-sizing
	if (s.Padding != nil && !s.Padding.IsZero()) || (s.Border != nil && s.Border.Width > 0) {
		b.add("box-sizing", "border-box")
	}

	// typography
	if s.Color != nil {
		b.add("color", s.Color.String())
	}
	if s.FontFamily != "" {
		b.add("font-family", quoteFamily(s.FontFamily))
	}
	b.pxPtr("font-size", s.FontSize)
	if s.FontWeight != 0 {
		b.add("font-weight", strconv.Itoa(s.FontWeight))
	}
	if s.LineHeight != nil {
		if s.LineHeight.Unitless {
			b.add("line-height", formatNumber(s.LineHeight.Value))
		} else {
			b.px("line-height", s.LineHeight.Value)
		}
	}
	b.pxPtr("letter-spacing", s.LetterSpacing)
	if s.TextAlign != "" {
		b.add("text-align", s.TextAlign)
	}
	if s.TextDecoration != "" {
		b.add("text-decoration", s.TextDecoration)
	}
	if s.TextTransform != "" {
		b.add("text-transform", s.TextTransform)
	}
	if s.PreWrap {
		b.add("white-space", "pre-wrap")
	}
	if s.Ellipsis {
		if !s.ClipContent {
			b.add("overflow", "hidden")
		}
		b.add("text-overflow", "ellipsis")
		if s.MaxLines > 1 {
			b.add("display", "-webkit-box")
			b.add("-webkit-line-clamp", strconv.Itoa(s.MaxLines))
			b.add("-webkit-box-orient", "vertical")
		} else {
			b.add("white-space", "nowrap")
		}
	}

	return b.String()
}

type declBuilder struct {
	parts []string
}

func (b *declBuilder) add(prop, value string) {
	b.parts = append(b.parts, prop+": "+value)
}

func (b *declBuilder) px(prop string, v float64) {
	b.add(prop, formatNumber(v)+"px")
}

func (b *declBuilder) pxPtr(prop string, v *float64) {
	if v != nil {
		b.px(prop, *v)
	}
}

func (b *declBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}
	return strings.Join(b.parts, "; ") + ";"
}

// formatNumber rounds to two decimals and drops trailing zeros.
func formatNumber(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // normalize negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func quoteFamily(f string) string {
	if strings.ContainsAny(f, " ,") {
		return "'" + f + "'"
	}
	return f
}
