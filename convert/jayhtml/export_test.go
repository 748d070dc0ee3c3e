package jayhtml_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"fjc/binding"
	"fjc/contract"
	"fjc/convert/jayhtml"
	"fjc/design"
	"fjc/diag"
)

func loadPage(t *testing.T) *contract.Page {
	t.Helper()
	p, err := contract.LoadPage("testdata/page.yaml")
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}
	return p
}

func tag(path ...string) binding.LayerBinding {
	return binding.LayerBinding{SectionID: "0:1", TagPath: path}
}

func bound(n *design.Node, bs ...binding.LayerBinding) *design.Node {
	if err := design.SetBindings(n, bs); err != nil {
		panic(err)
	}
	return n
}

func text(id, chars string) *design.Node {
	return &design.Node{
		ID:         id,
		Name:       chars,
		Kind:       design.KindText,
		Characters: chars,
		Text:       &design.TextStyle{FontFamily: "Inter", FontSize: 16, AutoResize: design.AutoResizeWidthHeight},
	}
}

func pageDoc(children ...*design.Node) *design.Document {
	root := &design.Node{ID: "0:1", Name: "Product", Kind: design.KindSection, LayoutMode: design.LayoutVertical, Children: children}
	design.MarkPage(root, "/products/:slug")
	return design.NewDocument("Product", "/products/:slug", root)
}

func export(t *testing.T, doc *design.Document) (*jayhtml.Result, *etree.Document) {
	t.Helper()
	res, err := jayhtml.New(jayhtml.DefaultOptions(), zaptest.NewLogger(t)).Export(doc, loadPage(t))
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	data, err := res.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out := etree.NewDocument()
	if err := out.ReadFromBytes(data); err != nil {
		t.Fatalf("exported page is not well formed: %v\n%s", err, data)
	}
	return res, out
}

func byID(t *testing.T, doc *etree.Document, id string) *etree.Element {
	t.Helper()
	el := doc.FindElement("//*[@data-figma-id='" + id + "']")
	if el == nil {
		t.Fatalf("no element for node %s", id)
	}
	return el
}

func TestExport_NotPage(t *testing.T) {
	doc := pageDoc()
	doc.Root.PluginData = nil
	_, err := jayhtml.New(jayhtml.DefaultOptions(), zaptest.NewLogger(t)).Export(doc, nil)
	if !errors.Is(err, jayhtml.ErrNotPage) {
		t.Fatalf("Export() = %v, want ErrNotPage", err)
	}
}

func TestExport_Bindings(t *testing.T) {
	button := bound(&design.Node{ID: "b:1", Name: "Add", Kind: design.KindFrame}, tag("addToCart"))
	button.SetMeta(design.MetaSemantic, "button")
	doc := pageDoc(
		bound(text("t:1", "Title"), tag("title")),
		bound(text("t:2", "1"), tag("quantity")),
		button,
		bound(&design.Node{ID: "i:1", Name: "Hero", Kind: design.KindRectangle, Fills: []design.Paint{{Type: design.PaintImage}}},
			binding.LayerBinding{SectionID: "0:1", TagPath: []string{"heroImage"}, Attribute: "src"}),
		bound(text("t:3", "0"), binding.LayerBinding{ContractPath: binding.ContractPath{Key: "cart"}, SectionID: "0:1", TagPath: []string{"itemCount"}}),
	)
	_, out := export(t, doc)

	if got := byID(t, out, "t:1").Text(); got != "{title}" {
		t.Errorf("dynamic content = %q", got)
	}
	dual := byID(t, out, "t:2")
	if dual.SelectAttrValue("ref", "") != "quantity" || dual.Text() != "{quantity}" {
		t.Errorf("dual: ref=%q text=%q", dual.SelectAttrValue("ref", ""), dual.Text())
	}
	btn := byID(t, out, "b:1")
	if btn.Tag != "button" || btn.SelectAttrValue("ref", "") != "addToCart" {
		t.Errorf("interactive: <%s ref=%q>", btn.Tag, btn.SelectAttrValue("ref", ""))
	}
	img := byID(t, out, "i:1")
	if img.Tag != "img" || img.SelectAttrValue("src", "") != "{heroImage}" || img.SelectAttrValue("alt", "") != "Hero" {
		t.Errorf("image: %+v", img.Attr)
	}
	if got := byID(t, out, "t:3").Text(); got != "{cart.itemCount}" {
		t.Errorf("headless content = %q", got)
	}

	scripts := out.FindElements("//head/script")
	if len(scripts) != 2 {
		t.Fatalf("scripts = %d, want 2", len(scripts))
	}
	if scripts[1].SelectAttrValue("key", "") != "cart" || scripts[1].SelectAttrValue("plugin", "") != "wix-stores" {
		t.Errorf("headless script: %+v", scripts[1].Attr)
	}
	link := out.FindElement("//head/link")
	if link == nil || !strings.Contains(link.SelectAttrValue("href", ""), "family=Inter") {
		t.Errorf("font link missing")
	}
}

func TestExport_TextTypography(t *testing.T) {
	n := text("t:1", "Read more")
	n.Width, n.SizingHorizontal = 120, design.SizingFixed
	n.Text.AutoResize = design.AutoResizeHeight
	n.Text.FontWeight = 700
	n.Text.Hyperlink = "https://example.com"
	n.Fills = []design.Paint{{Type: design.PaintSolid, Color: &design.RGBA{R: 1, A: 1}}}
	_, out := export(t, pageDoc(n))

	el := byID(t, out, "t:1")
	style := el.SelectAttrValue("style", "")
	for _, want := range []string{"width: 120px", "color: #ff0000", "font-family: Inter", "font-weight: 700"} {
		if !strings.Contains(style, want) {
			t.Errorf("style %q lacks %q", style, want)
		}
	}
	if strings.Contains(style, "height") {
		t.Errorf("auto height text must not have height: %q", style)
	}
	a := el.FindElement("a")
	if a == nil || a.SelectAttrValue("href", "") != "https://example.com" || a.Text() != "Read more" {
		t.Fatalf("hyperlink not spliced")
	}
}

func TestExport_MissingFont(t *testing.T) {
	n := text("t:1", "Hello")
	n.Text.MissingFont = true
	res, out := export(t, pageDoc(n))
	if out.FindElement("//*[@data-figma-id='t:1']") != nil {
		t.Fatal("text with missing font must not be emitted as element")
	}
	if !res.Warnings.Has(diag.MissingFont) {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	data, _ := res.Bytes()
	if !bytes.Contains(data, []byte("<!-- Hello: missing font Inter -->")) {
		t.Fatalf("comment missing:\n%s", data)
	}
}

func TestExport_ImageSource(t *testing.T) {
	static := &design.Node{ID: "i:1", Name: "Logo", Kind: design.KindRectangle, Fills: []design.Paint{{Type: design.PaintImage, ImageURL: "/logo.png"}}}
	empty := &design.Node{ID: "i:2", Name: "Empty", Kind: design.KindRectangle}
	empty.SetMeta(design.MetaSemantic, "img")
	res, out := export(t, pageDoc(static, empty))

	if got := byID(t, out, "i:1").SelectAttrValue("src", ""); got != "/logo.png" {
		t.Errorf("static src = %q", got)
	}
	if got := byID(t, out, "i:2").SelectAttrValue("src", ""); got != jayhtml.DefaultOptions().PlaceholderImage {
		t.Errorf("placeholder src = %q", got)
	}
	if res.Warnings.Count(diag.MissingImageSource) != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func repeaterDoc(layout string, children ...*design.Node) *design.Document {
	list := bound(&design.Node{ID: "r:1", Name: "Items", Kind: design.KindFrame, LayoutMode: layout, Children: children}, tag("items"))
	return pageDoc(list)
}

func TestExport_Repeater(t *testing.T) {
	item := &design.Node{ID: "r:2", Name: "Item", Kind: design.KindFrame, Children: []*design.Node{
		bound(text("r:3", "Name"), tag("items", "name")),
	}}
	second := &design.Node{ID: "r:4", Name: "Item copy", Kind: design.KindFrame}
	_, out := export(t, repeaterDoc(design.LayoutVertical, item, second))

	tpl := byID(t, out, "r:2")
	if tpl.SelectAttrValue("forEach", "") != "items" || tpl.SelectAttrValue("trackBy", "") != "id" {
		t.Fatalf("template attributes: %+v", tpl.Attr)
	}
	if got := byID(t, out, "r:3").Text(); got != "{name}" {
		t.Errorf("item binding must be relative to repeater, got %q", got)
	}
	if out.FindElement("//*[@data-figma-id='r:4']") != nil {
		t.Error("only the first child is the template")
	}
}

func TestExport_RepeaterErrors(t *testing.T) {
	exp := jayhtml.New(jayhtml.DefaultOptions(), zaptest.NewLogger(t))
	page := loadPage(t)

	_, err := exp.Export(repeaterDoc("", &design.Node{ID: "x", Kind: design.KindFrame}), page)
	if !errors.Is(err, jayhtml.ErrRepeaterLayout) {
		t.Errorf("no layout: %v", err)
	}
	_, err = exp.Export(repeaterDoc(design.LayoutHorizontal), page)
	if !errors.Is(err, jayhtml.ErrRepeaterEmpty) {
		t.Errorf("no children: %v", err)
	}
}

func variantDoc(components ...*design.Node) *design.Document {
	set := &design.Node{
		ID:       "s:1",
		Name:     "mediaType",
		Kind:     design.KindComponentSet,
		Children: components,
		PropertyDefinitions: map[string]design.ComponentProperty{
			"mediaType": {Type: design.PropertyVariant, DefaultValue: "IMAGE", VariantOptions: []string{"IMAGE", "VIDEO", "hover:IMAGE"}},
		},
	}
	inst := bound(&design.Node{ID: "n:1", Name: "media", Kind: design.KindInstance, MainComponentID: components[0].ID},
		binding.LayerBinding{SectionID: "0:1", TagPath: []string{"mediaType"}, Property: "mediaType"})
	doc := pageDoc(inst)
	doc.Components = []*design.Node{set}
	return doc
}

func component(id, value string) *design.Node {
	return &design.Node{
		ID:                id,
		Name:              "mediaType=" + value,
		Kind:              design.KindComponent,
		VariantProperties: map[string]string{"mediaType": value},
		Children:          []*design.Node{text(id+"/t", value)},
	}
}

func TestExport_Variant(t *testing.T) {
	res, out := export(t, variantDoc(component("c:1", "IMAGE"), component("c:2", "VIDEO")))
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	for id, cond := range map[string]string{"c:1": "mediaType == IMAGE", "c:2": "mediaType == VIDEO"} {
		if got := byID(t, out, id).SelectAttrValue("if", ""); got != cond {
			t.Errorf("%s: if = %q, want %q", id, got, cond)
		}
	}
	if n := len(out.FindElements("//*[@if]")); n != 2 {
		t.Errorf("pseudo state values must be skipped, got %d wrappers", n)
	}
}

func TestExport_VariantFallback(t *testing.T) {
	res, out := export(t, variantDoc(component("c:1", "IMAGE")))
	if res.Warnings.Count(diag.NoVariantMatch) != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	wrappers := out.FindElements("//*[@if]")
	if len(wrappers) != 2 {
		t.Fatalf("wrappers = %d", len(wrappers))
	}
	if wrappers[1].SelectAttrValue("data-figma-id", "") != "" {
		t.Error("round trip marker must be emitted once per node")
	}
}

func TestExport_BooleanVariant(t *testing.T) {
	on := &design.Node{ID: "c:1", Name: "isOnSale=true", Kind: design.KindComponent, VariantProperties: map[string]string{"isOnSale": "true"}}
	off := &design.Node{ID: "c:2", Name: "isOnSale=false", Kind: design.KindComponent, VariantProperties: map[string]string{"isOnSale": "false"}}
	set := &design.Node{
		ID: "s:1", Name: "isOnSale", Kind: design.KindComponentSet, Children: []*design.Node{on, off},
		PropertyDefinitions: map[string]design.ComponentProperty{"isOnSale": {Type: design.PropertyBoolean, DefaultValue: "false"}},
	}
	inst := bound(&design.Node{ID: "n:1", Kind: design.KindInstance, MainComponentID: "c:1"},
		binding.LayerBinding{SectionID: "0:1", TagPath: []string{"isOnSale"}, Property: "isOnSale"})
	doc := pageDoc(inst)
	doc.Components = []*design.Node{set}

	_, out := export(t, doc)
	if got := byID(t, out, "c:1").SelectAttrValue("if", ""); got != "isOnSale" {
		t.Errorf("true branch: %q", got)
	}
	if got := byID(t, out, "c:2").SelectAttrValue("if", ""); got != "!isOnSale" {
		t.Errorf("false branch: %q", got)
	}
}

func TestExport_Deterministic(t *testing.T) {
	first, _ := export(t, variantDoc(component("c:1", "IMAGE"), component("c:2", "VIDEO")))
	second, _ := export(t, variantDoc(component("c:1", "IMAGE"), component("c:2", "VIDEO")))
	a, _ := first.Bytes()
	b, _ := second.Bytes()
	if !bytes.Equal(a, b) {
		t.Fatalf("export is not deterministic:\n%s\n%s", a, b)
	}
}
