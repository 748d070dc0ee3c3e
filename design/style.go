package design

import (
	"fjc/css"
)

var (
	primaryAlign = map[css.Align]string{
		css.AlignStart:        "MIN",
		css.AlignCenter:       "CENTER",
		css.AlignEnd:          "MAX",
		css.AlignSpaceBetween: "SPACE_BETWEEN",
	}
	counterAlign = map[css.Align]string{
		css.AlignStart:    "MIN",
		css.AlignCenter:   "CENTER",
		css.AlignEnd:      "MAX",
		css.AlignBaseline: "BASELINE",
		css.AlignStretch:  "STRETCH",
	}
	textAlign = map[string]string{
		"left":    "LEFT",
		"start":   "LEFT",
		"center":  "CENTER",
		"right":   "RIGHT",
		"end":     "RIGHT",
		"justify": "JUSTIFIED",
	}
	textDecoration = map[string]string{
		"underline":    "UNDERLINE",
		"line-through": "STRIKETHROUGH",
	}
	textCase = map[string]string{
		"uppercase":  "UPPER",
		"lowercase":  "LOWER",
		"capitalize": "TITLE",
	}
)

// dashPattern used for dashed strokes.
var dashPattern = []float64{4, 4}

func toRGBA(c css.Color) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func toColor(c RGBA) css.Color {
	return css.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func ptr[T any](v T) *T {
	return &v
}

// ApplyStyle writes structured style onto node geometry, layout, paints and
// (for TEXT nodes) typography.
func ApplyStyle(n *Node, st css.Style) {
	if st.Absolute {
		n.Positioning = PositioningAbsolute
		if st.X != nil {
			n.X = *st.X
		}
		if st.Y != nil {
			n.Y = *st.Y
		}
	}

	n.SizingHorizontal, n.SizingVertical = SizingHug, SizingHug
	if st.Width != nil {
		n.Width, n.SizingHorizontal = *st.Width, SizingFixed
	}
	if st.Height != nil {
		n.Height, n.SizingVertical = *st.Height, SizingFixed
	}
	n.MinWidth, n.MaxWidth, n.MinHeight, n.MaxHeight = st.MinWidth, st.MaxWidth, st.MinHeight, st.MaxHeight

	if st.Rotation != nil {
		// design tools rotate counter clockwise
		n.Rotation = -*st.Rotation
	}
	if st.Opacity != nil && *st.Opacity < 1 {
		n.Opacity = ptr(*st.Opacity)
	}
	n.ClipsContent = st.ClipContent

	switch st.Layout {
	case css.LayoutRow:
		n.LayoutMode = LayoutHorizontal
	case css.LayoutColumn:
		n.LayoutMode = LayoutVertical
	}
	if st.Gap != nil {
		n.ItemSpacing = *st.Gap
	}
	if st.Padding != nil {
		n.PaddingTop, n.PaddingRight, n.PaddingBottom, n.PaddingLeft = st.Padding.Top, st.Padding.Right, st.Padding.Bottom, st.Padding.Left
	}
	n.PrimaryAxisAlign = primaryAlign[st.JustifyContent]
	n.CounterAxisAlign = counterAlign[st.AlignItems]

	fill := st.Background
	if n.Kind == KindText {
		fill = st.Color
	}
	if fill != nil {
		n.Fills = append(n.Fills, Paint{Type: PaintSolid, Color: ptr(toRGBA(*fill))})
	}
	if b := st.Border; b != nil && b.Width > 0 {
		c := css.Color{A: 1}
		if b.Color != nil {
			c = *b.Color
		}
		n.Strokes = []Paint{{Type: PaintSolid, Color: ptr(toRGBA(c))}}
		n.StrokeWeight = b.Width
		if b.Dashed {
			n.DashPattern = append([]float64(nil), dashPattern...)
		}
	}
	if st.BorderRadius != nil {
		n.CornerRadius = *st.BorderRadius
	}
	for _, sh := range st.Shadows {
		n.Effects = append(n.Effects, Effect{
			Type:   EffectDropShadow,
			Color:  toRGBA(sh.Color),
			Offset: Vector{X: sh.X, Y: sh.Y},
			Radius: sh.Blur,
			Spread: sh.Spread,
		})
	}

	if n.Kind == KindText {
		n.Text = textStyle(st)
	}
}

func textStyle(st css.Style) *TextStyle {
	ts := &TextStyle{
		FontFamily:     st.FontFamily,
		FontWeight:     st.FontWeight,
		TextAlign:      textAlign[st.TextAlign],
		LetterSpacing:  st.LetterSpacing,
		TextDecoration: textDecoration[st.TextDecoration],
		TextCase:       textCase[st.TextTransform],
		PreserveSpace:  st.PreWrap,
	}
	if st.FontSize != nil {
		ts.FontSize = *st.FontSize
	}
	if lh := st.LineHeight; lh != nil {
		unit := "PIXELS"
		if lh.Unitless {
			unit = "MULTIPLIER"
		}
		ts.LineHeight = &LineHeight{Value: lh.Value, Unit: unit}
	}
	if st.Ellipsis {
		ts.Truncation = "ENDING"
		ts.MaxLines = st.MaxLines
	}
	switch {
	case st.Width == nil:
		ts.AutoResize = AutoResizeWidthHeight
	case st.Height == nil:
		ts.AutoResize = AutoResizeHeight
	default:
		ts.AutoResize = AutoResizeNone
	}
	return ts
}

func fixed(sizing string, v float64) bool {
	return sizing == SizingFixed || (sizing == "" && v > 0)
}

// StyleOf derives structured style of the node for emission.
func StyleOf(n *Node) css.Style {
	var st css.Style

	if n.Positioning == PositioningAbsolute {
		st.Absolute = true
		st.X, st.Y = ptr(n.X), ptr(n.Y)
	} else {
		for _, c := range n.Children {
			if c.Positioning == PositioningAbsolute {
				st.Relative = true
				break
			}
		}
	}

	emitW, emitH := fixed(n.SizingHorizontal, n.Width), fixed(n.SizingVertical, n.Height)
	if n.Kind == KindText && n.Text != nil {
		switch n.Text.AutoResize {
		case AutoResizeWidthHeight:
			emitW, emitH = false, false
		case AutoResizeHeight:
			emitH = false
		}
	}
	if emitW {
		st.Width = ptr(n.Width)
	}
	if emitH {
		st.Height = ptr(n.Height)
	}
	st.MinWidth, st.MaxWidth, st.MinHeight, st.MaxHeight = n.MinWidth, n.MaxWidth, n.MinHeight, n.MaxHeight

	if n.Rotation != 0 {
		st.Rotation = ptr(-n.Rotation)
	}
	if n.Opacity != nil && *n.Opacity < 1 {
		st.Opacity = ptr(*n.Opacity)
	}
	st.ClipContent = n.ClipsContent

	switch n.LayoutMode {
	case LayoutHorizontal:
		st.Layout = css.LayoutRow
	case LayoutVertical:
		st.Layout = css.LayoutColumn
	}
	if st.Layout != css.LayoutNone && n.ItemSpacing != 0 {
		st.Gap = ptr(n.ItemSpacing)
	}
	if n.PaddingTop != 0 || n.PaddingRight != 0 || n.PaddingBottom != 0 || n.PaddingLeft != 0 {
		st.Padding = &css.Padding{Top: n.PaddingTop, Right: n.PaddingRight, Bottom: n.PaddingBottom, Left: n.PaddingLeft}
	}
	st.JustifyContent = reverse(primaryAlign, n.PrimaryAxisAlign)
	st.AlignItems = reverse(counterAlign, n.CounterAxisAlign)

	if c := SolidFill(n); c != nil {
		if n.Kind == KindText {
			st.Color = c
		} else {
			st.Background = c
		}
	}
	if n.StrokeWeight > 0 && len(n.Strokes) > 0 && n.Strokes[0].Color != nil {
		c := toColor(*n.Strokes[0].Color)
		st.Border = &css.Border{Width: n.StrokeWeight, Color: &c, Dashed: len(n.DashPattern) > 0}
	}
	if n.Kind == KindEllipse {
		st.Round = true
	} else if n.CornerRadius > 0 {
		st.BorderRadius = ptr(n.CornerRadius)
	}
	for _, e := range n.Effects {
		if e.Type != EffectDropShadow {
			continue
		}
		st.Shadows = append(st.Shadows, css.Shadow{X: e.Offset.X, Y: e.Offset.Y, Blur: e.Radius, Spread: e.Spread, Color: toColor(e.Color)})
	}

	if n.Kind == KindText && n.Text != nil {
		ts := n.Text
		st.FontFamily = ts.FontFamily
		if ts.FontSize > 0 {
			st.FontSize = ptr(ts.FontSize)
		}
		st.FontWeight = ts.FontWeight
		st.TextAlign = reverseString(textAlign, ts.TextAlign)
		st.LetterSpacing = ts.LetterSpacing
		if ts.LineHeight != nil {
			st.LineHeight = &css.LineHeight{Value: ts.LineHeight.Value, Unitless: ts.LineHeight.Unit == "MULTIPLIER"}
		}
		st.TextDecoration = reverseString(textDecoration, ts.TextDecoration)
		st.TextTransform = reverseString(textCase, ts.TextCase)
		st.PreWrap = ts.PreserveSpace
		if ts.Truncation == "ENDING" {
			st.Ellipsis = true
			st.MaxLines = ts.MaxLines
		}
	}
	return st
}

// SolidFill returns color of the first visible solid fill.
func SolidFill(n *Node) *css.Color {
	for _, p := range n.Fills {
		if p.Type == PaintSolid && p.Color != nil {
			c := toColor(*p.Color)
			return &c
		}
	}
	return nil
}

// ImageFill returns first image fill.
func ImageFill(n *Node) *Paint {
	for i := range n.Fills {
		if n.Fills[i].Type == PaintImage {
			return &n.Fills[i]
		}
	}
	return nil
}

func reverse(m map[css.Align]string, v string) css.Align {
	for k, s := range m {
		if s == v && v != "" {
			return k
		}
	}
	return css.AlignUnset
}

// reverseString finds CSS keyword for design value. Several keywords may map
// to the same value, the canonical one is preferred.
func reverseString(m map[string]string, v string) string {
	if v == "" {
		return ""
	}
	best := ""
	for k, s := range m {
		if s == v && (best == "" || canonicalKeyword[k]) {
			best = k
		}
	}
	return best
}

var canonicalKeyword = map[string]bool{"left": true, "right": true}
