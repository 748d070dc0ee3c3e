package css

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fjc/diag"
)

// placeholderPattern matches binding placeholders ({path} or ${path}) inside
// declaration values.
var placeholderPattern = regexp.MustCompile(`\$?\{[^{}]*\}`)

// ignoredProperties are understood but intentionally not carried into the
// structured style.
var ignoredProperties = map[string]bool{
	"box-sizing":         true,
	"cursor":             true,
	"transition":         true,
	"object-fit":         true,
	"object-position":    true,
	"flex":               true,
	"flex-grow":          true,
	"flex-shrink":        true,
	"flex-basis":         true,
	"flex-wrap":          true,
	"align-self":         true,
	"z-index":            true,
	"outline":            true,
	"list-style":         true,
	"list-style-type":    true,
	"user-select":        true,
	"pointer-events":     true,
	"-webkit-box-orient": true,
	"vertical-align":     true,
	"word-break":         true,
	"overflow-wrap":      true,
}

// Resolver converts inline style declarations to structured style records.
type Resolver struct {
	log *zap.Logger
}

// NewResolver creates a new style resolver.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log.Named("css-resolver")}
}

// Resolve parses inline declarations into Style. Unsupported, percentage and
// dynamic values are reported as warnings and left out of the result.
func (r *Resolver) Resolve(inline string) (Style, []diag.Warning) {
	var (
		st      Style
		ws      diag.List
		top     *float64
		left    *float64
		dashed  bool
		display string
		dir     string
	)

	for _, d := range SplitDeclarations(inline) {
		if placeholderPattern.MatchString(d.Value) {
			ws.Add(diag.DynamicStyle, d.Property, "dynamic value %q cannot be resolved statically", d.Value)
			continue
		}

		vals := parseValues(d.Value)
		if len(vals) == 0 {
			continue
		}

		switch d.Property {
		case "width":
			st.Width = r.pixels(d, vals, &ws)
		case "height":
			st.Height = r.pixels(d, vals, &ws)
		case "min-width":
			st.MinWidth = r.pixels(d, vals, &ws)
		case "max-width":
			st.MaxWidth = r.pixels(d, vals, &ws)
		case "min-height":
			st.MinHeight = r.pixels(d, vals, &ws)
		case "max-height":
			st.MaxHeight = r.pixels(d, vals, &ws)
		case "top":
			top = r.pixels(d, vals, &ws)
		case "left":
			left = r.pixels(d, vals, &ws)
		case "position":
			switch vals[0].Keyword {
			case "absolute":
				st.Absolute = true
			case "relative":
				st.Relative = true
			}
		case "display":
			display = vals[0].Keyword
		case "flex-direction":
			dir = vals[0].Keyword
		case "gap", "row-gap", "column-gap":
			st.Gap = r.pixels(d, vals[:1], &ws)
		case "padding":
			if p, ok := r.paddingShorthand(d, vals, &ws); ok {
				st.Padding = &p
			}
		case "padding-top", "padding-right", "padding-bottom", "padding-left":
			v := r.pixels(d, vals, &ws)
			if v == nil {
				continue
			}
			if st.Padding == nil {
				st.Padding = &Padding{}
			}
			switch d.Property {
			case "padding-top":
				st.Padding.Top = *v
			case "padding-right":
				st.Padding.Right = *v
			case "padding-bottom":
				st.Padding.Bottom = *v
			case "padding-left":
				st.Padding.Left = *v
			}
		case "background-color", "background":
			st.Background = r.color(d, d.Value, &ws)
		case "color":
			st.Color = r.color(d, d.Value, &ws)
		case "font-family":
			first, _, _ := strings.Cut(d.Value, ",")
			st.FontFamily = unquote(first)
		case "font-size":
			st.FontSize = r.pixels(d, vals, &ws)
		case "font-weight":
			st.FontWeight = r.fontWeight(d, vals[0], &ws)
		case "line-height":
			switch {
			case vals[0].Kind == KindNumber:
				st.LineHeight = &LineHeight{Value: vals[0].Value, Unitless: true}
			case vals[0].IsPixels():
				st.LineHeight = &LineHeight{Value: vals[0].Value}
			case vals[0].Kind == KindPercentage:
				ws.Add(diag.PercentageStyle, d.Property, "percentage value %q is not supported", d.Value)
			default:
				ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
			}
		case "letter-spacing":
			st.LetterSpacing = r.pixels(d, vals, &ws)
		case "border":
			st.Border = r.border(d, vals, &ws)
		case "border-style":
			if vals[0].Keyword == "dashed" || vals[0].Keyword == "dotted" {
				dashed = true
			}
		case "stroke-dasharray":
			dashed = true
		case "border-radius":
			if vals[0].Kind == KindPercentage && vals[0].Value == 50 {
				st.Round = true
				continue
			}
			st.BorderRadius = r.pixels(d, vals[:1], &ws)
		case "opacity":
			if vals[0].Kind != KindNumber {
				ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
				continue
			}
			v := vals[0].Value
			st.Opacity = &v
		case "overflow":
			st.ClipContent = vals[0].Keyword == "hidden" || vals[0].Keyword == "clip"
		case "transform":
			st.Rotation = r.rotation(d, vals, &ws)
		case "box-shadow":
			st.Shadows = r.shadows(d, &ws)
		case "justify-content":
			st.JustifyContent = r.align(d, vals[0], &ws)
		case "align-items":
			st.AlignItems = r.align(d, vals[0], &ws)
		case "text-align":
			st.TextAlign = vals[0].Keyword
		case "text-decoration", "text-decoration-line":
			if vals[0].Keyword != "none" {
				st.TextDecoration = vals[0].Keyword
			}
		case "text-transform":
			if vals[0].Keyword != "none" {
				st.TextTransform = vals[0].Keyword
			}
		case "text-overflow":
			st.Ellipsis = vals[0].Keyword == "ellipsis"
		case "-webkit-line-clamp":
			if vals[0].Kind == KindNumber {
				st.MaxLines = int(vals[0].Value)
			}
		case "white-space":
			st.PreWrap = vals[0].Keyword == "pre-wrap" || vals[0].Keyword == "pre-line"
		default:
			if ignoredProperties[d.Property] {
				continue
			}
			ws.Add(diag.UnsupportedStyle, d.Property, "unsupported property %q", d.Property)
		}
	}

	switch display {
	case "flex", "inline-flex":
		st.Layout = LayoutRow
		if dir == "column" || dir == "column-reverse" {
			st.Layout = LayoutColumn
		}
	case "":
		// flex-direction alone does not make a flex container
	default:
		st.Layout = LayoutNone
	}

	if st.Border != nil && dashed {
		st.Border.Dashed = true
	}
	if st.Absolute {
		st.X, st.Y = left, top
	}

	if len(ws) > 0 {
		r.log.Debug("Style resolved with warnings", zap.String("style", inline), zap.Int("warnings", len(ws)))
	}
	return st, ws
}

func (r *Resolver) pixels(d Declaration, vals []Value, ws *diag.List) *float64 {
	v := vals[0]
	switch {
	case v.IsPixels():
		f := v.Value
		return &f
	case v.Kind == KindPercentage:
		ws.Add(diag.PercentageStyle, d.Property, "percentage value %q is not supported", d.Value)
	default:
		ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
	}
	return nil
}

// paddingShorthand expands 1/2/3/4 value padding the way CSS does.
func (r *Resolver) paddingShorthand(d Declaration, vals []Value, ws *diag.List) (Padding, bool) {
	if len(vals) > 4 {
		ws.Add(diag.UnsupportedValue, d.Property, "too many values in %q", d.Value)
		return Padding{}, false
	}
	px := make([]float64, len(vals))
	for i, v := range vals {
		p := r.pixels(d, []Value{v}, ws)
		if p == nil {
			return Padding{}, false
		}
		px[i] = *p
	}
	switch len(px) {
	case 1:
		return Padding{Top: px[0], Right: px[0], Bottom: px[0], Left: px[0]}, true
	case 2:
		return Padding{Top: px[0], Right: px[1], Bottom: px[0], Left: px[1]}, true
	case 3:
		return Padding{Top: px[0], Right: px[1], Bottom: px[2], Left: px[1]}, true
	default:
		return Padding{Top: px[0], Right: px[1], Bottom: px[2], Left: px[3]}, true
	}
}

func (r *Resolver) color(d Declaration, raw string, ws *diag.List) *Color {
	c, err := ParseColor(raw)
	if err != nil {
		ws.Add(diag.UnsupportedValue, d.Property, "%v", err)
		return nil
	}
	return &c
}

func (r *Resolver) fontWeight(d Declaration, v Value, ws *diag.List) int {
	switch {
	case v.Kind == KindNumber:
		return int(v.Value)
	case v.Keyword == "bold":
		return 700
	case v.Keyword == "normal":
		return 400
	}
	ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
	return 0
}

// border handles "border: <width> [style] <color>" shorthand. Style keyword
// is not carried, dash pattern comes from border-style.
func (r *Resolver) border(d Declaration, vals []Value, ws *diag.List) *Border {
	b := &Border{}
	for _, v := range vals {
		switch {
		case v.IsPixels():
			b.Width = v.Value
		case v.Kind == KindHash || v.Kind == KindFunction:
			b.Color = r.color(d, v.Raw, ws)
		case v.Keyword == "none":
			return nil
		case v.Kind == KindKeyword:
			if _, known := namedColors[v.Keyword]; known {
				b.Color = r.color(d, v.Raw, ws)
			}
		default:
			ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
		}
	}
	return b
}

func (r *Resolver) rotation(d Declaration, vals []Value, ws *diag.List) *float64 {
	f := vals[0]
	if f.Kind != KindFunction || !strings.HasPrefix(f.Keyword, "rotate(") {
		ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
		return nil
	}
	arg := strings.TrimSuffix(strings.TrimPrefix(f.Keyword, "rotate("), ")")
	num, unit := splitNumber(strings.TrimSpace(arg))
	deg, err := strconv.ParseFloat(num, 64)
	if err != nil || (unit != "deg" && unit != "") {
		ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
		return nil
	}
	return &deg
}

func (r *Resolver) shadows(d Declaration, ws *diag.List) []Shadow {
	var out []Shadow
	for _, part := range splitTopLevel(d.Value) {
		if part == "" || strings.Contains(part, "inset") {
			ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
			continue
		}
		var (
			sh   = Shadow{Color: Color{A: 0.25}}
			nums []float64
		)
		for _, v := range parseValues(part) {
			switch {
			case v.IsPixels():
				nums = append(nums, v.Value)
			case v.Kind == KindHash || v.Kind == KindFunction || v.Kind == KindKeyword:
				if c, err := ParseColor(v.Raw); err == nil {
					sh.Color = c
				}
			}
		}
		if len(nums) < 2 {
			ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
			continue
		}
		sh.X, sh.Y = nums[0], nums[1]
		if len(nums) > 2 {
			sh.Blur = nums[2]
		}
		if len(nums) > 3 {
			sh.Spread = nums[3]
		}
		out = append(out, sh)
	}
	return out
}

func (r *Resolver) align(d Declaration, v Value, ws *diag.List) Align {
	switch v.Keyword {
	case "flex-start", "start", "left", "normal":
		return AlignStart
	case "center":
		return AlignCenter
	case "flex-end", "end", "right":
		return AlignEnd
	case "space-between":
		return AlignSpaceBetween
	case "stretch":
		return AlignStretch
	case "baseline":
		return AlignBaseline
	}
	ws.Add(diag.UnsupportedValue, d.Property, "unsupported value %q", d.Value)
	return AlignUnset
}
