package jayhtml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"fjc/binding"
	"fjc/css"
	"fjc/design"
	"fjc/diag"
)

const svgNS = "http://www.w3.org/2000/svg"

// convert emits tokens for a single node. Most nodes produce exactly one
// element, variant instances produce one conditional element per
// permutation and TEXT with a missing font produces a comment.
func (r *run) convert(n *design.Node, lvl level) ([]etree.Token, error) {
	a := r.analyze(n, lvl)

	switch a := a.(type) {
	case binding.Repeater:
		el, err := r.repeater(n, a, lvl)
		if err != nil {
			return nil, err
		}
		return []etree.Token{el}, nil
	case binding.PropertyVariant:
		if n.Kind == design.KindInstance {
			return r.variant(n, a, lvl)
		}
		r.ws.Add(diag.InvalidBindingMix, n.ID, "variant property bindings on %s node ignored", n.Kind)
		return r.byKind(n, binding.None{}, lvl)
	}
	return r.byKind(n, a, lvl)
}

func (r *run) analyze(n *design.Node, lvl level) binding.Analysis {
	bs, err := design.Bindings(n)
	if err != nil {
		r.ws.Add(diag.UnresolvedBinding, n.ID, "malformed bindings: %v", err)
		return binding.None{}
	}
	a, ws := r.analyzer.Analyze(bs, lvl.scope, n.ID)
	r.ws.Append(ws...)
	return a
}

func (r *run) byKind(n *design.Node, a binding.Analysis, lvl level) ([]etree.Token, error) {
	var (
		el  etree.Token
		err error
	)
	switch n.Kind {
	case design.KindSection, design.KindFrame, design.KindGroup, design.KindComponent, design.KindComponentSet:
		el, err = r.container(n, n.Children, a, lvl)
	case design.KindInstance:
		children := n.Children
		if len(children) == 0 {
			if main := r.index[n.MainComponentID]; main != nil {
				children = main.Children
			}
		}
		el, err = r.container(n, children, a, lvl)
	case design.KindText:
		el = r.text(n, a)
	case design.KindRectangle:
		if isImage(n) {
			el = r.image(n, a)
		} else {
			el, err = r.container(n, n.Children, a, lvl)
		}
	case design.KindEllipse:
		el, err = r.container(n, n.Children, a, lvl)
	case design.KindVector:
		el = r.vector(n)
	default:
		panic(fmt.Sprintf("unhandled node kind %s", n.Kind))
	}
	if err != nil {
		return nil, err
	}
	return []etree.Token{el}, nil
}

// bind applies non structural analysis to element and returns placeholder
// for dynamic content, if any.
func bind(el *etree.Element, a binding.Analysis) string {
	switch a := a.(type) {
	case binding.None:
	case binding.DynamicContent:
		return placeholder(a.Path)
	case binding.Interactive:
		el.CreateAttr(binding.AttrRef, a.Ref)
	case binding.Dual:
		el.CreateAttr(binding.AttrRef, a.Ref)
		return placeholder(a.Path)
	case binding.Attribute:
		for _, name := range a.Names() {
			el.CreateAttr(name, placeholder(a.Attributes[name]))
		}
		if a.Content != "" {
			return placeholder(a.Content)
		}
	case binding.PropertyVariant, binding.Repeater:
		// structural, handled before kind dispatch
	default:
		panic(fmt.Sprintf("unhandled binding analysis %T", a))
	}
	return ""
}

func placeholder(path string) string {
	return "{" + path + "}"
}

func setStyle(el *etree.Element, st css.Style) {
	if s := css.Compose(st); s != "" {
		el.CreateAttr("style", s)
	}
}

// tagOf returns semantic HTML tag recorded on the node.
func tagOf(n *design.Node, def string) string {
	t := strings.ToLower(strings.TrimSpace(n.Meta(design.MetaSemantic)))
	if t == "" || strings.ContainsFunc(t, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-'
	}) {
		return def
	}
	return t
}

func isImage(n *design.Node) bool {
	return n.Meta(design.MetaSemantic) == "img" || design.ImageFill(n) != nil
}

func (r *run) container(n *design.Node, children []*design.Node, a binding.Analysis, lvl level) (*etree.Element, error) {
	el := r.element(n, tagOf(n, "div"))
	content := bind(el, a)
	setStyle(el, design.StyleOf(n))
	if content != "" {
		el.SetText(content)
	}
	if err := r.children(el, children, lvl.down()); err != nil {
		return nil, err
	}
	return el, nil
}

func (r *run) text(n *design.Node, a binding.Analysis) etree.Token {
	ts := n.Text
	if ts != nil && ts.MissingFont {
		r.ws.Add(diag.MissingFont, n.ID, "font %q is not available, text emitted as comment", ts.FontFamily)
		body := strings.ReplaceAll(fmt.Sprintf("%s: missing font %s", n.Name, ts.FontFamily), "--", "-")
		return etree.NewComment(" " + body + " ")
	}

	el := r.element(n, tagOf(n, "div"))
	content := n.Characters
	// characters may already hold the placeholder among static text
	if dyn := bind(el, a); dyn != "" && !strings.Contains(content, dyn) {
		content = dyn
	}

	st := design.StyleOf(n)
	if strings.Contains(content, "\n") && !st.Ellipsis {
		st.PreWrap = true
	}
	setStyle(el, st)

	if ts != nil && ts.FontFamily != "" {
		r.fonts[ts.FontFamily] = true
	}

	if ts != nil && ts.Hyperlink != "" {
		link := el.CreateElement("a")
		link.CreateAttr("href", ts.Hyperlink)
		link.SetText(content)
		return el
	}
	el.SetText(content)
	return el
}

// image emits img element. Source is taken from src binding, then from image
// fill and finally from configured placeholder.
func (r *run) image(n *design.Node, a binding.Analysis) *etree.Element {
	el := r.element(n, "img")

	var (
		src, alt string
		rest     []string
		attrs    map[string]string
	)
	switch a := a.(type) {
	case binding.Attribute:
		attrs = a.Attributes
		for _, name := range a.Names() {
			switch name {
			case "src":
				src = placeholder(a.Attributes[name])
			case "alt":
				alt = placeholder(a.Attributes[name])
			default:
				rest = append(rest, name)
			}
		}
	case binding.DynamicContent:
		src = placeholder(a.Path)
	case binding.Interactive:
		el.CreateAttr(binding.AttrRef, a.Ref)
	case binding.Dual:
		el.CreateAttr(binding.AttrRef, a.Ref)
		src = placeholder(a.Path)
	}

	if src == "" {
		if f := design.ImageFill(n); f != nil && f.ImageURL != "" {
			src = f.ImageURL
		}
	}
	if src == "" {
		r.ws.Add(diag.MissingImageSource, n.ID, "image %q has neither bound nor static source, using placeholder", n.Name)
		src = r.opts.PlaceholderImage
	}
	if alt == "" {
		alt = n.Name
	}

	el.CreateAttr("src", src)
	el.CreateAttr("alt", alt)
	for _, name := range rest {
		el.CreateAttr(name, placeholder(attrs[name]))
	}

	st := design.StyleOf(n)
	st.Background = nil
	setStyle(el, st)
	return el
}

// vector emits inline svg, node fill paints the paths.
func (r *run) vector(n *design.Node) *etree.Element {
	el := r.element(n, "svg")
	el.CreateAttr("xmlns", svgNS)
	el.CreateAttr("viewBox", "0 0 "+number(n.Width)+" "+number(n.Height))

	st := design.StyleOf(n)
	fill := st.Background
	st.Background = nil
	setStyle(el, st)

	if len(n.Paths) == 0 {
		r.log.Debug("Vector without paths", zap.String("node", nodeRef(n)))
	}
	for _, p := range n.Paths {
		path := el.CreateElement("path")
		path.CreateAttr("d", p.Data)
		if fill != nil {
			path.CreateAttr("fill", fill.String())
		}
		if p.WindingRule == "EVENODD" {
			path.CreateAttr("fill-rule", "evenodd")
		}
	}
	return el
}

// repeater converts only the first child as the item template, descendants
// resolve bindings relative to the repeated tag.
func (r *run) repeater(n *design.Node, a binding.Repeater, lvl level) (*etree.Element, error) {
	if n.LayoutMode == "" || n.LayoutMode == design.LayoutNone {
		return nil, fmt.Errorf("%s bound to %s: %w", nodeRef(n), a.FullPath, ErrRepeaterLayout)
	}
	if len(n.Children) == 0 {
		return nil, fmt.Errorf("%s bound to %s: %w", nodeRef(n), a.FullPath, ErrRepeaterEmpty)
	}
	if len(n.Children) > 1 {
		r.log.Debug("Repeater extra children skipped", zap.String("node", nodeRef(n)), zap.Int("children", len(n.Children)-1))
	}

	el := r.element(n, tagOf(n, "div"))
	setStyle(el, design.StyleOf(n))

	inner := lvl.down().with(lvl.scope.WithRepeater(a.FullPath))
	toks, err := r.convert(n.Children[0], inner)
	if err != nil {
		return nil, err
	}

	var tpl *etree.Element
	if len(toks) == 1 {
		tpl, _ = toks[0].(*etree.Element)
	}
	if tpl == nil {
		tpl = etree.NewElement("div")
		for _, t := range toks {
			tpl.AddChild(t)
		}
	}
	tpl.CreateAttr(binding.AttrForEach, a.Path)
	if a.TrackBy != "" {
		tpl.CreateAttr(binding.AttrTrackBy, a.TrackBy)
	}
	el.AddChild(tpl)
	return el, nil
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
