package designdoc

import (
	"fmt"

	"fjc/design"
	"fjc/diag"
	"fjc/ir"
)

type adapter struct {
	components map[string]*design.Node
	ws         diag.List
}

// Adapt maps intermediate tree onto vendor document. Node kinds map one to
// one: images become rectangles with image fill, repeaters become auto
// layout frames. Component sets go to the document component library.
func Adapt(t *ir.Tree) (*design.Document, []diag.Warning) {
	a := &adapter{components: make(map[string]*design.Node)}

	lib := make([]*design.Node, 0, len(t.Components))
	for _, c := range t.Components {
		n := a.node(c)
		n.Walk(func(d *design.Node) bool {
			if d.Kind == design.KindComponent {
				a.components[d.ID] = d
			}
			return true
		})
		lib = append(lib, n)
	}

	root := a.node(t.Root)
	design.MarkPage(root, t.Route)

	doc := design.NewDocument(t.Name, t.Route, root)
	if len(lib) > 0 {
		doc.Components = lib
	}
	return doc, a.ws
}

func (a *adapter) node(n *ir.Node) *design.Node {
	d := &design.Node{ID: n.ID, Name: n.Name}

	switch n.Kind {
	case ir.KindSection:
		d.Kind = design.KindSection
	case ir.KindFrame, ir.KindRepeater:
		d.Kind = design.KindFrame
	case ir.KindText:
		d.Kind = design.KindText
	case ir.KindImage:
		d.Kind = design.KindRectangle
	case ir.KindComponentSet:
		d.Kind = design.KindComponentSet
	case ir.KindComponent:
		d.Kind = design.KindComponent
	case ir.KindInstance:
		d.Kind = design.KindInstance
	default:
		panic(fmt.Sprintf("unhandled IR node kind %s", n.Kind))
	}

	design.ApplyStyle(d, n.Style)

	switch n.Kind {
	case ir.KindText:
		if n.Text != nil {
			d.Characters = n.Text.Content
			d.Text.Hyperlink = n.Text.Href
		}
	case ir.KindImage:
		p := design.Paint{Type: design.PaintImage, ScaleMode: "FILL"}
		if n.Image != nil {
			p.ImageURL, p.MimeType = n.Image.Src, n.Image.MimeType
		}
		d.Fills = append(d.Fills, p)
		d.SetMeta(design.MetaSemantic, "img")
	case ir.KindRepeater:
		if d.LayoutMode == "" {
			d.LayoutMode = design.LayoutVertical
		}
	case ir.KindComponentSet:
		a.definitions(d, n.Variant)
	case ir.KindComponent:
		if n.Variant != nil && len(n.Variant.Assignments) > 0 {
			d.VariantProperties = make(map[string]string, len(n.Variant.Assignments))
			for _, as := range n.Variant.Assignments {
				d.VariantProperties[as.Property] = as.Value
			}
		}
	case ir.KindInstance:
		a.instance(d, n)
	}

	if n.Kind != ir.KindImage && n.Kind != ir.KindSection && n.Tag != "" && n.Tag != "div" {
		d.SetMeta(design.MetaSemantic, n.Tag)
	}

	if err := design.SetBindings(d, n.Bindings); err != nil {
		a.ws.Add(diag.UnresolvedBinding, n.ID, "bindings dropped: %v", err)
	}
	if n.Kind == ir.KindInstance {
		if err := design.SetExpressions(d, n.Expressions); err != nil {
			a.ws.Add(diag.UnsupportedExpression, n.ID, "variant expressions dropped: %v", err)
		}
	} else if len(n.Expressions) > 0 {
		d.SetMeta(design.MetaCondition, n.Expressions[0].Expression)
	}

	for _, c := range n.Children {
		d.Children = append(d.Children, a.node(c))
	}
	return d
}

// definitions declares one property per variant dimension, default value is
// the first one.
func (a *adapter) definitions(d *design.Node, v *ir.Variant) {
	if v == nil || len(v.Properties) == 0 {
		return
	}
	d.PropertyDefinitions = make(map[string]design.ComponentProperty, len(v.Properties))
	for _, p := range v.Properties {
		def := design.ComponentProperty{Type: design.PropertyVariant, VariantOptions: p.Values}
		if p.Boolean {
			def = design.ComponentProperty{Type: design.PropertyBoolean}
		}
		if len(p.Values) > 0 {
			def.DefaultValue = p.Values[0]
		}
		d.PropertyDefinitions[p.Name] = def
	}
}

// instance points at main component and takes its size.
func (a *adapter) instance(d *design.Node, n *ir.Node) {
	if n.Variant == nil {
		a.ws.Add(diag.NoVariantMatch, n.ID, "instance without main component")
		return
	}
	d.MainComponentID = n.Variant.MainComponentID
	main := a.components[d.MainComponentID]
	if main == nil {
		a.ws.Add(diag.NoVariantMatch, n.ID, "main component %q not found in component library", d.MainComponentID)
		return
	}
	d.Width, d.Height = main.Width, main.Height
	d.SizingHorizontal, d.SizingVertical = main.SizingHorizontal, main.SizingVertical
	d.LayoutMode = main.LayoutMode
}
