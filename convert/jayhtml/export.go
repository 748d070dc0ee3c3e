// Package jayhtml exports vendor design documents as Jay HTML pages.
//
// Export is a depth first walk over the page tree. Every node is classified
// by its bindings first (repeater and variant bindings change the emitted
// structure) and then converted according to its kind. Problems that do not
// prevent producing a page are collected as warnings.
package jayhtml

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"fjc/binding"
	"fjc/contract"
	"fjc/design"
	"fjc/diag"
	"fjc/ident"
)

var (
	ErrNotPage        = errors.New("document root is not a page")
	ErrRepeaterLayout = errors.New("repeater node has no auto layout")
	ErrRepeaterEmpty  = errors.New("repeater node has no children")
)

// Options control page emission.
type Options struct {
	// Indent is number of spaces per nesting level, 0 disables indentation.
	Indent int
	// EmitIDs writes round trip markers so re-import keeps node ids.
	EmitIDs bool
	// PlaceholderImage is used for images without any source.
	PlaceholderImage string
	// FontsURL is the base of font stylesheet link, empty disables the link.
	FontsURL string
}

// DefaultOptions returns options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Indent:           2,
		EmitIDs:          true,
		PlaceholderImage: "/images/placeholder.png",
		FontsURL:         "https://fonts.googleapis.com/css2",
	}
}

// Result of export.
type Result struct {
	Doc      *etree.Document
	Fonts    []string
	Warnings diag.List
}

// Bytes serializes produced page.
func (r *Result) Bytes() ([]byte, error) {
	return r.Doc.WriteToBytes()
}

// Exporter converts vendor documents to Jay HTML. It holds no per call state
// and may be reused.
type Exporter struct {
	log      *zap.Logger
	opts     Options
	analyzer *binding.Analyzer
}

// New creates exporter.
func New(opts Options, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		log:      log.Named("jayhtml"),
		opts:     opts,
		analyzer: binding.NewAnalyzer(log),
	}
}

// run is the state of one export call. Everything that must not leak between
// sibling subtrees lives in level instead.
type run struct {
	*Exporter

	page    *contract.Page
	index   map[string]*design.Node
	parents map[string]*design.Node
	emitted map[string]bool
	fonts   map[string]bool
	ws      diag.List
}

// level is the per recursion context, passed by value.
type level struct {
	scope binding.Scope
	depth int
}

func (l level) with(scope binding.Scope) level {
	l.scope = scope
	return l
}

func (l level) down() level {
	l.depth++
	return l
}

// Export converts document page tree. Page describes contracts of the page,
// it may be nil when the page has no bindings.
func (e *Exporter) Export(doc *design.Document, page *contract.Page) (*Result, error) {
	start := time.Now()

	if doc == nil || !design.IsPage(doc.Root) {
		return nil, ErrNotPage
	}

	r := &run{
		Exporter: e,
		page:     page,
		index:    doc.Index(),
		parents:  make(map[string]*design.Node),
		emitted:  make(map[string]bool),
		fonts:    make(map[string]bool),
	}
	link := func(n *design.Node) bool {
		for _, c := range n.Children {
			r.parents[c.ID] = n
		}
		return true
	}
	doc.Root.Walk(link)
	for _, c := range doc.Components {
		c.Walk(link)
	}

	out := etree.NewDocument()
	out.WriteSettings.CanonicalEndTags = true
	out.WriteSettings.CanonicalText = true
	out.WriteSettings.CanonicalAttrVal = true
	out.CreateDirective("DOCTYPE html")

	html := out.CreateElement("html")
	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	if title := firstNonEmpty(doc.Name, doc.Root.Name); title != "" {
		head.CreateElement("title").SetText(title)
	}
	r.scripts(head)

	body, err := r.body(doc.Root)
	if err != nil {
		return nil, err
	}

	fonts := r.fontList()
	if href := fontsHref(e.opts.FontsURL, fonts); href != "" {
		l := head.CreateElement("link")
		l.CreateAttr("rel", "stylesheet")
		l.CreateAttr("href", href)
	}
	html.AddChild(body)

	if e.opts.Indent > 0 {
		out.Indent(e.opts.Indent)
	}

	e.log.Debug("Page exported",
		zap.String("route", doc.Root.Meta(design.MetaRoute)),
		zap.Int("fonts", len(fonts)),
		zap.Int("warnings", len(r.ws)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Doc: out, Fonts: fonts, Warnings: r.ws}, nil
}

// scripts declares page contract and headless component usages.
func (r *run) scripts(head *etree.Element) {
	if r.page == nil {
		return
	}
	if r.page.ContractFile != "" {
		s := head.CreateElement("script")
		s.CreateAttr("type", "application/jay-data")
		s.CreateAttr("contract", r.page.ContractFile)
	}
	for _, u := range r.page.Usages {
		s := head.CreateElement("script")
		s.CreateAttr("type", "application/jay-headless")
		s.CreateAttr("plugin", u.Plugin)
		s.CreateAttr("contract", u.Component)
		s.CreateAttr("key", u.Key)
	}
}

// body converts page root. Root itself becomes the body element.
func (r *run) body(root *design.Node) (*etree.Element, error) {
	el := r.element(root, "body")
	setStyle(el, design.StyleOf(root))

	lvl := level{scope: binding.NewScope(r.page, root.ID)}
	if err := r.children(el, root.Children, lvl.down()); err != nil {
		return nil, err
	}
	return el, nil
}

func (r *run) children(parent *etree.Element, nodes []*design.Node, lvl level) error {
	for _, c := range nodes {
		toks, err := r.convert(c, lvl)
		if err != nil {
			return err
		}
		for _, t := range toks {
			parent.AddChild(t)
		}
	}
	return nil
}

// element creates element for node carrying round trip marker and verbatim
// condition. Marker is written once per id, repeated renderings of the same
// node (component used by several permutations) do not carry it.
func (r *run) element(n *design.Node, tag string) *etree.Element {
	el := etree.NewElement(tag)
	if r.opts.EmitIDs && n.ID != "" && !r.emitted[n.ID] {
		el.CreateAttr(ident.RoundTripAttr, n.ID)
		r.emitted[n.ID] = true
	}
	if cond := n.Meta(design.MetaCondition); cond != "" {
		el.CreateAttr(binding.AttrIf, cond)
	}
	return el
}

func (r *run) fontList() []string {
	fonts := make([]string, 0, len(r.fonts))
	for f := range r.fonts {
		fonts = append(fonts, f)
	}
	sort.Sort(natural.StringSlice(fonts))
	return fonts
}

// fontsHref builds stylesheet link for all used font families.
func fontsHref(base string, fonts []string) string {
	if base == "" || len(fonts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(base)
	for i, f := range fonts {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString("family=")
		b.WriteString(strings.ReplaceAll(f, " ", "+"))
	}
	b.WriteString("&display=swap")
	return b.String()
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func nodeRef(n *design.Node) string {
	return fmt.Sprintf("%s %q (%s)", n.Kind, n.Name, n.ID)
}
