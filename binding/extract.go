package binding

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"fjc/condition"
	"fjc/diag"
	"fjc/ident"
)

// Markup attribute names. The HTML parser lower cases attribute names, so
// lookups use lower case forms.
const (
	AttrRef     = "ref"
	AttrIf      = "if"
	AttrForEach = "forEach"
	AttrTrackBy = "trackBy"
)

// BindableAttributes may carry placeholders.
var BindableAttributes = []string{"src", "alt", "href", "value", "placeholder", "title", "aria-label"}

var (
	placeholder = regexp.MustCompile(`\$?\{([^{}]*)\}`)
	dottedPath  = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)
)

// Placeholders returns distinct placeholder bodies found in text, in order
// of appearance, whitespace trimmed.
func Placeholders(text string) []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		p := strings.TrimSpace(m[1])
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// HasPlaceholder reports whether text contains binding placeholder.
func HasPlaceholder(text string) bool {
	return placeholder.MatchString(text)
}

// Extraction is everything recovered from one element.
type Extraction struct {
	Bindings    []LayerBinding
	Expressions []VariantExpression
	// Repeater and RepeaterBinding are set when element carries forEach.
	Repeater        *Repeater
	RepeaterBinding *LayerBinding
	// Scope applies to element content and descendants, it has the repeater
	// pushed when element is a repeater template.
	Scope Scope
}

// Extractor reconstructs bindings from Jay HTML elements.
type Extractor struct {
	log *zap.Logger
	ids *ident.Generator
}

// NewExtractor returns extractor, ids are used for expression identifiers.
func NewExtractor(ids *ident.Generator, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = ident.New(ident.DefaultLength)
	}
	return &Extractor{log: log.Named("binding-extractor"), ids: ids}
}

// Extract recognizes forEach/trackBy, ref, bindable attributes, if and
// placeholders in text (the element's own text content, supplied by caller).
// Unresolvable paths are reported and dropped.
func (x *Extractor) Extract(el *html.Node, text string, scope Scope, node string) (Extraction, []diag.Warning) {
	var (
		ws  diag.List
		out = Extraction{Scope: scope}
	)

	if each := attr(el, AttrForEach); each != "" {
		if rep, b, ok := x.repeater(each, attr(el, AttrTrackBy), scope, node, &ws); ok {
			out.Repeater, out.RepeaterBinding = rep, b
			out.Scope = scope.WithRepeater(rep.FullPath)
		}
	}
	inner := out.Scope

	if ref := strings.TrimSpace(attr(el, AttrRef)); ref != "" {
		if b, ok := x.ref(ref, inner, node, &ws); ok {
			out.Bindings = append(out.Bindings, b)
		}
	}

	for _, name := range BindableAttributes {
		val := attr(el, name)
		if val == "" {
			continue
		}
		for _, p := range Placeholders(val) {
			b, ok := x.resolve(p, inner, node, &ws)
			if !ok {
				continue
			}
			b.Attribute = name
			out.Bindings = append(out.Bindings, b)
		}
	}

	if text != "" {
		bs, tws := x.ExtractText(text, inner, node)
		ws.Append(tws...)
		out.Bindings = append(out.Bindings, bs...)
	}

	if expr := strings.TrimSpace(attr(el, AttrIf)); expr != "" {
		out.Expressions = append(out.Expressions, x.Expression(expr, node))
	}
	return out, ws
}

// ExtractText returns one content binding per distinct resolvable placeholder
// path in text.
func (x *Extractor) ExtractText(text string, scope Scope, node string) ([]LayerBinding, []diag.Warning) {
	var (
		ws  diag.List
		out []LayerBinding
	)
	for _, p := range Placeholders(text) {
		if b, ok := x.resolve(p, scope, node, &ws); ok {
			out = append(out, b)
		}
	}
	return out, ws
}

// Expression captures condition verbatim. Its id is derived from the
// expression text and referenced paths are recorded without resolution.
func (x *Extractor) Expression(expr, node string) VariantExpression {
	return VariantExpression{
		ID:         x.ids.Seeded(node, AttrIf, expr),
		Expression: expr,
		References: condition.Paths(condition.Tokenize(expr)),
	}
}

func (x *Extractor) resolve(written string, scope Scope, node string, ws *diag.List) (LayerBinding, bool) {
	if !dottedPath.MatchString(written) {
		ws.Add(diag.UnsupportedExpression, node, "binding expression {%s} is not a tag path", written)
		return LayerBinding{}, false
	}
	t, ok := scope.lookupWritten(written)
	if !ok {
		ws.Add(diag.UnresolvedBinding, node, "unresolved binding path {%s}", written)
		return LayerBinding{}, false
	}
	x.log.Debug("Resolved binding", zap.String("node", node), zap.String("path", written), zap.String("full", t.full))
	return scope.binding(t), true
}

func (x *Extractor) ref(ref string, scope Scope, node string, ws *diag.List) (LayerBinding, bool) {
	if strings.Contains(ref, ".") {
		ws.Add(diag.UnresolvedBinding, node, "ref %q must name a single tag", ref)
		return LayerBinding{}, false
	}
	t, ok := scope.lookupWritten(ref)
	if !ok {
		ws.Add(diag.UnresolvedBinding, node, "unresolved ref %q", ref)
		return LayerBinding{}, false
	}
	if !t.tag.IsInteractive() {
		ws.Add(diag.AmbiguousBinding, node, "ref %q points to non interactive tag", ref)
	}
	return scope.binding(t), true
}

func (x *Extractor) repeater(each, trackBy string, scope Scope, node string, ws *diag.List) (*Repeater, *LayerBinding, bool) {
	each = strings.TrimSpace(each)
	if !dottedPath.MatchString(each) {
		ws.Add(diag.UnsupportedExpression, node, "forEach expression %q is not a tag path", each)
		return nil, nil, false
	}
	t, ok := scope.lookupWritten(each)
	if !ok {
		ws.Add(diag.UnresolvedBinding, node, "unresolved forEach path %q", each)
		return nil, nil, false
	}
	if !t.tag.Repeated {
		ws.Add(diag.UnresolvedBinding, node, "forEach path %q is not a repeated tag", each)
		return nil, nil, false
	}
	trackBy = strings.TrimSpace(trackBy)
	if trackBy == "" {
		trackBy = t.tag.TrackBy
	}
	b := scope.binding(t)
	return &Repeater{Path: each, FullPath: t.full, TrackBy: trackBy}, &b, true
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == key {
			return a.Val
		}
	}
	return ""
}
