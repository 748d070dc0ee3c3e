// Package designdoc imports Jay HTML pages as vendor design documents.
//
// Import runs in two steps. The builder walks parsed HTML producing the
// intermediate tree (package ir), reconstructing bindings and synthesizing
// component sets from conditional markup. The adapter then maps the
// intermediate tree onto vendor nodes.
package designdoc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fjc/binding"
	"fjc/contract"
	"fjc/css"
	"fjc/diag"
	"fjc/ident"
	"fjc/ir"
	"fjc/variant"
)

// ErrNoBody is returned for documents without body element.
var ErrNoBody = errors.New("page has no body")

// headings map heading tags to default font size, all headings are bold.
var headings = map[string]float64{
	"h1": 32,
	"h2": 24,
	"h3": 18.72,
	"h4": 16,
	"h5": 13.28,
	"h6": 10.72,
}

// inline elements do not break text flow, an element with inline children
// only is imported as a single TEXT node.
var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "br": true, "cite": true,
	"code": true, "em": true, "i": true, "kbd": true, "mark": true, "q": true,
	"s": true, "small": true, "span": true, "strong": true, "sub": true,
	"sup": true, "time": true, "u": true, "var": true, "wbr": true,
}

const svgMime = "image/svg+xml"

// builder is the state of a single import call.
type builder struct {
	*Importer

	root       *html.Node
	caser      cases.Caser
	components []*ir.Node
	ws         diag.List
}

// Build parses page and produces intermediate tree. Page supplies contracts,
// it may be nil in which case every binding is reported as unresolved.
func (im *Importer) Build(r io.Reader, page *contract.Page) (*ir.Tree, diag.List, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse page: %w", err)
	}
	body := find(doc, "body")
	if body == nil {
		return nil, nil, ErrNoBody
	}

	b := &builder{Importer: im, root: body, caser: cases.Title(language.English)}
	b.checkHead(find(doc, "head"), page)

	rootID := im.ids.ForElement(body, body)
	st := b.style(body, rootID)
	scope := binding.NewScope(page, rootID)

	children, err := b.children(body, ident.ElementPath(body, body), scope, typography(st))
	if err != nil {
		return nil, b.ws, err
	}

	tree := &ir.Tree{
		Route: im.opts.Route,
		Name:  im.opts.Name,
		Root: &ir.Node{
			ID:         rootID,
			SourcePath: ident.ElementPath(body, body),
			Kind:       ir.KindSection,
			Tag:        "body",
			Style:      st,
			Children:   children,
		},
		Components: b.components,
	}
	if page != nil {
		if page.Route != "" {
			tree.Route = page.Route
		}
		if page.Name != "" {
			tree.Name = page.Name
		}
	}
	if tree.Name == "" {
		if t := find(doc, "title"); t != nil {
			tree.Name = strings.TrimSpace(textOf(t))
		}
	}
	if tree.Route == "" {
		tree.Route = "/"
	}
	tree.Root.Name = tree.Name

	dedupe(im.ids, tree)
	return tree, b.ws, nil
}

// checkHead compares headless component declarations of the page with page
// configuration.
func (b *builder) checkHead(head *html.Node, page *contract.Page) {
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "script" || attr(c, "type") != "application/jay-headless" {
			continue
		}
		key := attr(c, "key")
		if page.Usage(key) == nil {
			b.ws.Add(diag.UnresolvedComponent, "head", "headless component %q (%s/%s) is not configured for the page", key, attr(c, "plugin"), attr(c, "contract"))
		}
	}
}

// children builds nodes for element children and loose text. Conditional
// groups are detected first and replaced by instances of synthesized
// component sets.
func (b *builder) children(parent *html.Node, parentPath string, scope binding.Scope, inherited css.Style) ([]*ir.Node, error) {
	groups := variant.DetectGroups(parent)
	groupOf := func(el *html.Node) *variant.Group {
		for i := range groups {
			if groups[i].Contains(el) {
				return &groups[i]
			}
		}
		return nil
	}

	var (
		out  []*ir.Node
		runs int
	)
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			out = append(out, b.looseText(c.Data, ident.ChildPath(parentPath, "text", runs), scope, inherited))
			runs++
		case html.ElementNode:
			if variant.IsNonVisual(c.Data) {
				continue
			}
			if g := groupOf(c); g != nil {
				if c != g.Members[0] {
					continue
				}
				nodes, err := b.group(*g, scope, inherited)
				if err != nil {
					return nil, err
				}
				out = append(out, nodes...)
				continue
			}
			n, err := b.element(c, scope, inherited)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

// group synthesizes component set for conditional siblings. A group whose
// conditions yield no permutation fails the import.
func (b *builder) group(g variant.Group, scope binding.Scope, inherited css.Style) ([]*ir.Node, error) {
	base := ident.ElementPath(g.Members[0], b.root)

	build := func(member *html.Node, scope binding.Scope) (*ir.Node, []diag.Warning, error) {
		n, err := b.element(member, scope, inherited)
		return n, nil, err
	}
	res, ws, err := b.synth.Synthesize(g, scope, base, build)
	b.ws.Append(ws...)
	if err != nil {
		return nil, err
	}
	b.components = append(b.components, res.Set)

	b.log.Debug("Variant group synthesized",
		zap.String("base", base),
		zap.String("set", res.Set.Name),
		zap.Int("components", len(res.Set.Children)))
	return []*ir.Node{res.Instance}, nil
}

// element classifies element and builds its subtree. Element with a single
// forEach child becomes repeater holding the template, a forEach element
// among other siblings gets repeater synthesized around it.
func (b *builder) element(el *html.Node, scope binding.Scope, inherited css.Style) (*ir.Node, error) {
	if tpl := template(el); tpl != nil {
		return b.repeater(el, tpl, scope, inherited)
	}

	n, rep, err := b.build(el, scope, inherited)
	if err != nil || rep == nil {
		return n, err
	}
	return &ir.Node{
		ID:         b.ids.Seeded(n.ID, "repeater"),
		SourcePath: n.SourcePath,
		Kind:       ir.KindRepeater,
		Name:       b.caser.String(rep.Path()),
		Tag:        "div",
		Bindings:   []binding.LayerBinding{*rep},
		Children:   []*ir.Node{n},
	}, nil
}

func (b *builder) repeater(el, tpl *html.Node, scope binding.Scope, inherited css.Style) (*ir.Node, error) {
	id := b.ids.ForElement(el, b.root)
	st := b.style(el, id)
	x, ws := b.x.Extract(el, "", scope, id)
	b.ws.Append(ws...)

	child, rep, err := b.build(tpl, x.Scope, mergeTypography(inherited, st))
	if err != nil {
		return nil, err
	}
	n := &ir.Node{
		ID:          id,
		SourcePath:  ident.ElementPath(el, b.root),
		Kind:        ir.KindFrame,
		Name:        b.nameOf(el, "Frame"),
		Tag:         el.Data,
		Style:       st,
		Bindings:    x.Bindings,
		Expressions: x.Expressions,
		Children:    []*ir.Node{child},
	}
	if rep != nil {
		n.Kind = ir.KindRepeater
		n.Name = b.nameOf(el, b.caser.String(rep.Path()))
		n.Bindings = append([]binding.LayerBinding{*rep}, n.Bindings...)
	}
	return n, nil
}

// build converts element to IMAGE, TEXT or FRAME node. Repeater binding of
// the element, if it has one, is returned separately.
func (b *builder) build(el *html.Node, scope binding.Scope, inherited css.Style) (*ir.Node, *binding.LayerBinding, error) {
	id := b.ids.ForElement(el, b.root)
	n := &ir.Node{
		ID:         id,
		SourcePath: ident.ElementPath(el, b.root),
		Tag:        el.Data,
		Style:      b.style(el, id),
	}

	var content string
	switch {
	case el.Data == "img" || el.Data == "svg":
		n.Kind = ir.KindImage
		n.Image = b.image(el)
		n.Name = firstNonEmpty(n.Image.Alt, b.nameOf(el, "Image"))
	case isText(el):
		n.Kind = ir.KindText
		pre := n.Style.PreWrap
		text, href := textContent(el, pre)
		content = text
		n.Text = &ir.Text{Content: text, Href: href}
		applyHeading(el.Data, &n.Style)
		n.Style = mergeTypography(inherited, n.Style)
		n.Name = textName(text)
	default:
		n.Kind = ir.KindFrame
		n.Name = b.nameOf(el, "Frame")
	}

	x, ws := b.x.Extract(el, content, scope, id)
	b.ws.Append(ws...)
	n.Bindings, n.Expressions = x.Bindings, x.Expressions

	if n.Kind == ir.KindFrame {
		children, err := b.children(el, n.SourcePath, x.Scope, mergeTypography(inherited, n.Style))
		if err != nil {
			return nil, nil, err
		}
		n.Children = children
	}
	return n, x.RepeaterBinding, nil
}

func (b *builder) looseText(data, sourcePath string, scope binding.Scope, inherited css.Style) *ir.Node {
	text := strings.Join(strings.Fields(data), " ")
	id := b.ids.Generate(sourcePath, nil, "")
	n := &ir.Node{
		ID:         id,
		SourcePath: sourcePath,
		Kind:       ir.KindText,
		Name:       textName(text),
		Tag:        "div",
		Style:      typography(inherited),
		Text:       &ir.Text{Content: text},
	}
	bs, ws := b.x.ExtractText(text, scope, id)
	b.ws.Append(ws...)
	n.Bindings = bs
	return n
}

// style resolves inline style of element, warnings are attributed to node.
func (b *builder) style(el *html.Node, id string) css.Style {
	st, ws := b.resolver.Resolve(attr(el, "style"))
	for _, w := range ws {
		w.Node = id + " " + w.Node
		b.ws.Append(w)
	}
	return st
}

func (b *builder) image(el *html.Node) *ir.Image {
	img := &ir.Image{Alt: attr(el, "alt")}
	if el.Data == "svg" {
		var buf bytes.Buffer
		if err := html.Render(&buf, el); err == nil {
			img.Src = "data:" + svgMime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
			img.MimeType = svgMime
		}
		return img
	}
	src := attr(el, "src")
	if binding.HasPlaceholder(src) {
		return img
	}
	img.Src = src
	img.MimeType = mimeOf(src)
	return img
}

// mimeOf guesses image type from source URL.
func mimeOf(src string) string {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		mime, _, _ := strings.Cut(rest, ";")
		mime, _, _ = strings.Cut(mime, ",")
		return mime
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(src), "."))
	switch ext {
	case "":
		return ""
	case "svg":
		return svgMime
	case "jpeg":
		ext = "jpg"
	}
	t := filetype.GetType(ext)
	if t == filetype.Unknown {
		return ""
	}
	return t.MIME.Value
}

// template returns the single element child of el carrying forEach, only
// when el has no other content.
func template(el *html.Node) *html.Node {
	var tpl *html.Node
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		case html.ElementNode:
			if variant.IsNonVisual(c.Data) {
				continue
			}
			if tpl != nil {
				return nil
			}
			tpl = c
		}
	}
	if tpl == nil || attr(tpl, binding.AttrForEach) == "" {
		return nil
	}
	return tpl
}

// isText reports whether element is a text leaf: it has text and no block
// level children.
func isText(el *html.Node) bool {
	hasText := false
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if strings.TrimSpace(c.Data) != "" {
					hasText = true
				}
			case html.ElementNode:
				if !inline[c.Data] || attr(c, binding.AttrIf) != "" || attr(c, binding.AttrForEach) != "" {
					return false
				}
				if !walk(c) {
					return false
				}
			}
		}
		return true
	}
	return walk(el) && hasText
}

// textContent collects text of element and its inline descendants. Unless
// whitespace is preserved runs are collapsed. Indentation between inline
// elements never counts as content.
func textContent(el *html.Node, pre bool) (string, string) {
	var (
		sb   strings.Builder
		href string
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if pre && strings.TrimSpace(c.Data) == "" && strings.Contains(c.Data, "\n") && hasElementSibling(c) {
					continue
				}
				sb.WriteString(c.Data)
			case html.ElementNode:
				switch c.Data {
				case "br":
					sb.WriteByte('\n')
					continue
				case "a":
					if href == "" {
						href = attr(c, "href")
					}
				}
				walk(c)
			}
		}
	}
	walk(el)
	if pre {
		return sb.String(), href
	}
	return strings.Join(strings.Fields(sb.String()), " "), href
}

func hasElementSibling(n *html.Node) bool {
	for s := n.Parent.FirstChild; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// applyHeading fills typography defaults of heading elements.
func applyHeading(tag string, st *css.Style) {
	size, ok := headings[tag]
	if !ok {
		return
	}
	if st.FontSize == nil {
		st.FontSize = &size
	}
	if st.FontWeight == 0 {
		st.FontWeight = 700
	}
}

// typography keeps inheritable text properties of style.
func typography(st css.Style) css.Style {
	return css.Style{
		Color:         st.Color,
		FontFamily:    st.FontFamily,
		FontSize:      st.FontSize,
		FontWeight:    st.FontWeight,
		LineHeight:    st.LineHeight,
		LetterSpacing: st.LetterSpacing,
		TextAlign:     st.TextAlign,
		TextTransform: st.TextTransform,
		PreWrap:       st.PreWrap,
	}
}

// mergeTypography fills inheritable text properties missing in st from
// parent.
func mergeTypography(parent, st css.Style) css.Style {
	if st.Color == nil {
		st.Color = parent.Color
	}
	if st.FontFamily == "" {
		st.FontFamily = parent.FontFamily
	}
	if st.FontSize == nil {
		st.FontSize = parent.FontSize
	}
	if st.FontWeight == 0 {
		st.FontWeight = parent.FontWeight
	}
	if st.LineHeight == nil {
		st.LineHeight = parent.LineHeight
	}
	if st.LetterSpacing == nil {
		st.LetterSpacing = parent.LetterSpacing
	}
	if st.TextAlign == "" {
		st.TextAlign = parent.TextAlign
	}
	if st.TextTransform == "" {
		st.TextTransform = parent.TextTransform
	}
	st.PreWrap = st.PreWrap || parent.PreWrap
	return st
}

// nameOf derives layer name from class or id attribute.
func (b *builder) nameOf(el *html.Node, def string) string {
	if cls := strings.Fields(attr(el, "class")); len(cls) > 0 {
		return b.caser.String(strings.NewReplacer("-", " ", "_", " ").Replace(cls[0]))
	}
	if id := attr(el, "id"); id != "" {
		return id
	}
	if def == "Frame" && el.Data != "div" {
		return b.caser.String(el.Data)
	}
	return def
}

// textName names text layers after their content, like design tools do.
func textName(text string) string {
	const limit = 40
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// dedupe makes ids unique over the whole tree. Duplicates come from copied
// round trip markers, later occurrences are reseeded. Instances follow
// renamed components of their set.
func dedupe(ids *ident.Generator, t *ir.Tree) {
	seen := make(map[string]bool)
	fix := func(n *ir.Node) (string, bool) {
		old := n.ID
		for seen[n.ID] {
			n.ID = ids.Seeded(n.ID, n.SourcePath)
		}
		seen[n.ID] = true
		return old, old != n.ID
	}

	instances := make(map[string][]*ir.Node)
	collect := func(n *ir.Node) bool {
		if n.Kind == ir.KindInstance && n.Variant != nil {
			instances[n.Variant.SetID] = append(instances[n.Variant.SetID], n)
		}
		return true
	}
	t.Root.Walk(collect)
	// instances of inner groups live inside components of outer sets
	for _, set := range t.Components {
		set.Walk(collect)
	}

	for _, set := range t.Components {
		setID := set.ID
		renamed := make(map[string]string)
		set.Walk(func(n *ir.Node) bool {
			if old, ok := fix(n); ok {
				renamed[old] = n.ID
			}
			return true
		})
		for _, inst := range instances[setID] {
			if id, ok := renamed[inst.Variant.MainComponentID]; ok {
				inst.Variant.MainComponentID = id
			}
			inst.Variant.SetID = set.ID
		}
	}
	t.Root.Walk(func(n *ir.Node) bool {
		fix(n)
		return true
	})
}
