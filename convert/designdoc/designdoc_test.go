package designdoc_test

import (
	"bytes"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"fjc/contract"
	"fjc/convert/designdoc"
	"fjc/convert/jayhtml"
	"fjc/design"
	"fjc/diag"
	"fjc/variant"
)

func loadPage(t *testing.T) *contract.Page {
	t.Helper()
	p, err := contract.LoadPage("testdata/page.yaml")
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}
	return p
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/product.jay-html")
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func importPage(t *testing.T, data []byte) *designdoc.Result {
	t.Helper()
	res, err := designdoc.New(designdoc.DefaultOptions(), zaptest.NewLogger(t)).Import(bytes.NewReader(data), loadPage(t))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return res
}

func body(html string) []byte {
	return []byte("<!DOCTYPE html><html><head><title>Test</title></head><body>" + html + "</body></html>")
}

func marshal(t *testing.T, doc *design.Document) []byte {
	t.Helper()
	data, err := design.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return data
}

func kinds(nodes []*design.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind.String()
	}
	return out
}

func paths(t *testing.T, n *design.Node) []string {
	t.Helper()
	bs, err := design.Bindings(n)
	if err != nil {
		t.Fatalf("Bindings(%s) error = %v", n.ID, err)
	}
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		p := b.Path()
		if b.ContractPath.Key != "" {
			p = b.ContractPath.Key + "." + p
		}
		if b.Attribute != "" {
			p = b.Attribute + "=" + p
		}
		out = append(out, p)
	}
	return out
}

func TestImport_Deterministic(t *testing.T) {
	data := fixture(t)
	first := marshal(t, importPage(t, data).Doc)
	second := marshal(t, importPage(t, data).Doc)
	if !bytes.Equal(first, second) {
		t.Errorf("repeated import differs:\n%s\n---\n%s", first, second)
	}
}

func TestImport_Page(t *testing.T) {
	res := importPage(t, fixture(t))
	root := res.Doc.Root

	if root.Kind != design.KindSection || !design.IsPage(root) {
		t.Fatalf("root = %s, page marker %v", root.Kind, design.IsPage(root))
	}
	if got := root.Meta(design.MetaRoute); got != "/products/:slug" {
		t.Errorf("route = %q", got)
	}
	if res.Doc.Name != "Product" {
		t.Errorf("name = %q", res.Doc.Name)
	}
	if root.LayoutMode != design.LayoutVertical || root.ItemSpacing != 16 {
		t.Errorf("root layout = %s gap %v", root.LayoutMode, root.ItemSpacing)
	}

	want := []string{"TEXT", "TEXT", "RECTANGLE", "INSTANCE", "TEXT", "INSTANCE", "FRAME", "TEXT", "TEXT"}
	if got := kinds(root.Children); !slices.Equal(got, want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}
	c := root.Children

	heading := c[0]
	if heading.Meta(design.MetaSemantic) != "h1" || heading.Text.FontSize != 32 || heading.Text.FontWeight != 700 {
		t.Errorf("heading: semantic %q size %v weight %v", heading.Meta(design.MetaSemantic), heading.Text.FontSize, heading.Text.FontWeight)
	}
	if heading.Text.FontFamily != "Inter" {
		t.Errorf("inherited font = %q", heading.Text.FontFamily)
	}
	if got := paths(t, heading); !slices.Equal(got, []string{"title"}) {
		t.Errorf("heading bindings = %v", got)
	}

	if c[1].Characters != "Price: {price}" || !slices.Equal(paths(t, c[1]), []string{"price"}) {
		t.Errorf("price text %q bindings %v", c[1].Characters, paths(t, c[1]))
	}

	hero := c[2]
	if hero.Meta(design.MetaSemantic) != "img" || design.ImageFill(hero) == nil {
		t.Errorf("hero is not an image: %+v", hero.Fills)
	}
	if hero.Width != 320 || hero.Height != 200 {
		t.Errorf("hero size = %vx%v", hero.Width, hero.Height)
	}
	if got := paths(t, hero); !slices.Equal(got, []string{"src=heroImage"}) {
		t.Errorf("hero bindings = %v", got)
	}

	button := c[4]
	if button.Meta(design.MetaSemantic) != "button" || !slices.Equal(paths(t, button), []string{"addToCart"}) {
		t.Errorf("button: semantic %q bindings %v", button.Meta(design.MetaSemantic), paths(t, button))
	}

	if got := paths(t, c[7]); !slices.Equal(got, []string{"cart.itemCount"}) {
		t.Errorf("headless bindings = %v", got)
	}
	if got := c[8].Meta(design.MetaCondition); got != "price > 100" {
		t.Errorf("kept condition = %q", got)
	}
	if res.Warnings.Has(diag.UnresolvedBinding) {
		t.Errorf("unexpected warnings:\n%s", res.Warnings)
	}
}

func TestImport_Variants(t *testing.T) {
	res := importPage(t, fixture(t))
	if len(res.Doc.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(res.Doc.Components))
	}
	index := res.Doc.Index()

	media := res.Doc.Components[0]
	if media.Kind != design.KindComponentSet || len(media.Children) != 2 {
		t.Fatalf("media set: %s with %d children", media.Kind, len(media.Children))
	}
	def, ok := media.PropertyDefinitions["mediaType"]
	if !ok || def.Type != design.PropertyVariant || !slices.Equal(def.VariantOptions, []string{"IMAGE", "VIDEO"}) || def.DefaultValue != "IMAGE" {
		t.Errorf("mediaType definition = %+v", def)
	}
	if got := media.Children[0].VariantProperties["mediaType"]; got != "IMAGE" {
		t.Errorf("first variant = %q", got)
	}
	if got := kinds(media.Children[0].Children); !slices.Equal(got, []string{"RECTANGLE"}) {
		t.Errorf("IMAGE variant children = %v", got)
	}
	if got := kinds(media.Children[1].Children); !slices.Equal(got, []string{"TEXT"}) {
		t.Errorf("VIDEO variant children = %v", got)
	}

	inst := res.Doc.Root.Children[3]
	if inst.MainComponentID != media.Children[0].ID {
		t.Errorf("instance main = %q, want %q", inst.MainComponentID, media.Children[0].ID)
	}
	if index[inst.MainComponentID] == nil {
		t.Errorf("main component %q is not indexed", inst.MainComponentID)
	}
	if got := paths(t, inst); !slices.Equal(got, []string{"mediaType"}) {
		t.Errorf("instance bindings = %v", got)
	}
	exprs, err := design.Expressions(inst)
	if err != nil || len(exprs) != 2 {
		t.Fatalf("instance expressions = %+v, %v", exprs, err)
	}

	sale := res.Doc.Components[1]
	if def := sale.PropertyDefinitions["isOnSale"]; def.Type != design.PropertyBoolean || def.DefaultValue != "false" {
		t.Errorf("isOnSale definition = %+v", def)
	}
	// false comes first, rendered by the negated member
	if got := sale.Children[0].Children[0].Characters; got != "Regular price" {
		t.Errorf("isOnSale=false renders %q", got)
	}
	if got := sale.Children[1].Children[0].Characters; got != "On sale" {
		t.Errorf("isOnSale=true renders %q", got)
	}
}

func TestImport_Repeater(t *testing.T) {
	res := importPage(t, fixture(t))
	list := res.Doc.Root.Children[6]

	if list.Meta(design.MetaSemantic) != "ul" || list.LayoutMode != design.LayoutVertical || list.ItemSpacing != 8 {
		t.Errorf("repeater: semantic %q layout %s gap %v", list.Meta(design.MetaSemantic), list.LayoutMode, list.ItemSpacing)
	}
	if got := paths(t, list); !slices.Equal(got, []string{"items"}) {
		t.Errorf("repeater bindings = %v", got)
	}
	if len(list.Children) != 1 {
		t.Fatalf("repeater children = %d", len(list.Children))
	}
	item := list.Children[0]
	if got := kinds(item.Children); !slices.Equal(got, []string{"RECTANGLE", "TEXT"}) {
		t.Fatalf("item children = %v", got)
	}
	if got := paths(t, item.Children[0]); !slices.Equal(got, []string{"src=items.image", "alt=items.name"}) {
		t.Errorf("item image bindings = %v", got)
	}
	if got := paths(t, item.Children[1]); !slices.Equal(got, []string{"items.name"}) {
		t.Errorf("item text bindings = %v", got)
	}
}

func TestImport_SynthesizedRepeater(t *testing.T) {
	res := importPage(t, body(`<h2>Items</h2><div forEach="items" trackBy="id">{name}</div>`))
	root := res.Doc.Root
	if got := kinds(root.Children); !slices.Equal(got, []string{"TEXT", "FRAME"}) {
		t.Fatalf("children = %v", got)
	}
	wrap := root.Children[1]
	if wrap.LayoutMode != design.LayoutVertical || !slices.Equal(paths(t, wrap), []string{"items"}) {
		t.Errorf("wrapper layout %s bindings %v", wrap.LayoutMode, paths(t, wrap))
	}
	if len(wrap.Children) != 1 || wrap.Children[0].Kind != design.KindText {
		t.Fatalf("wrapper children = %v", kinds(wrap.Children))
	}
}

func TestImport_Warnings(t *testing.T) {
	res := importPage(t, body(`<div>{unknownPath}</div><button ref="title">Go</button>`))
	if !res.Warnings.Has(diag.UnresolvedBinding) || !strings.Contains(res.Warnings.String(), "unknownPath") {
		t.Errorf("unresolved path is not reported:\n%s", res.Warnings)
	}
	if !res.Warnings.Has(diag.AmbiguousBinding) {
		t.Errorf("ref to data tag is not reported:\n%s", res.Warnings)
	}
	if got := paths(t, res.Doc.Root.Children[0]); len(got) != 0 {
		t.Errorf("unresolved binding kept: %v", got)
	}
}

func TestImport_NoPermutations(t *testing.T) {
	page := body(`<div if="items.length > 0">Some</div><div if="items.length == 0">None</div>`)
	_, err := designdoc.New(designdoc.DefaultOptions(), zaptest.NewLogger(t)).Import(bytes.NewReader(page), loadPage(t))
	if !errors.Is(err, variant.ErrNoPermutations) {
		t.Fatalf("Import() error = %v, want ErrNoPermutations", err)
	}
}

func TestImport_ConditionsAroundScript(t *testing.T) {
	res := importPage(t, body(`<div if="mediaType == IMAGE">img</div>
<script>track()</script>
<div if="mediaType == VIDEO">video</div>`))
	if len(res.Doc.Components) != 1 || len(res.Doc.Components[0].Children) != 2 {
		t.Fatalf("components = %d", len(res.Doc.Components))
	}
	if got := kinds(res.Doc.Root.Children); !slices.Equal(got, []string{"INSTANCE"}) {
		t.Errorf("root children = %v", got)
	}
}

func TestImport_Headless(t *testing.T) {
	page := []byte(`<html><head><script type="application/jay-headless" plugin="x" contract="y" key="missing"></script></head><body><p>Hi</p></body></html>`)
	res := importPage(t, page)
	if !res.Warnings.Has(diag.UnresolvedComponent) {
		t.Errorf("unknown headless key is not reported:\n%s", res.Warnings)
	}
}

func TestImport_EmptyPage(t *testing.T) {
	// parser always synthesizes body, an empty page imports as an empty section
	res := importPage(t, []byte(``))
	if res.Doc.Root.Kind != design.KindSection || len(res.Doc.Root.Children) != 0 {
		t.Errorf("empty page: %s with %d children", res.Doc.Root.Kind, len(res.Doc.Root.Children))
	}
}

func TestImport_SVG(t *testing.T) {
	res := importPage(t, body(`<svg viewBox="0 0 10 10"><path d="M0 0L10 10"></path></svg>`))
	n := res.Doc.Root.Children[0]
	f := design.ImageFill(n)
	if f == nil || f.MimeType != "image/svg+xml" || !strings.HasPrefix(f.ImageURL, "data:image/svg+xml;base64,") {
		t.Errorf("svg fill = %+v", f)
	}
}

func TestImport_Markers(t *testing.T) {
	res := importPage(t, body(`<div data-figma-id="12:7" style="display: flex"><p data-figma-id="12:8">A</p><p data-figma-id="12:8">B</p></div>`))
	frame := res.Doc.Root.Children[0]
	if frame.ID != "12:7" {
		t.Errorf("frame id = %q", frame.ID)
	}
	if frame.Children[0].ID != "12:8" {
		t.Errorf("first text id = %q", frame.Children[0].ID)
	}
	if frame.Children[1].ID == "12:8" {
		t.Error("duplicate marker is not reseeded")
	}
}

// export followed by import reproduces the same document, repeated cycles
// are stable.
func TestRoundTrip(t *testing.T) {
	page := loadPage(t)
	exporter := jayhtml.New(jayhtml.DefaultOptions(), zaptest.NewLogger(t))

	cycle := func(data []byte) (*design.Document, []byte) {
		t.Helper()
		res := importPage(t, data)
		out, err := exporter.Export(res.Doc, page)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		html, err := out.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		return res.Doc, html
	}

	doc1, html1 := cycle(fixture(t))
	doc2, html2 := cycle(html1)

	if !bytes.Equal(html1, html2) {
		t.Errorf("export is not stable:\n%s\n---\n%s", html1, html2)
	}
	ids1, ids2 := doc1.Index(), doc2.Index()
	for id := range ids1 {
		if ids2[id] == nil {
			t.Errorf("node %s (%s) lost in round trip", id, ids1[id].Name)
		}
	}
	if err := design.Validate(doc2); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
