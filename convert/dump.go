package convert

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"fjc/binding"
	"fjc/css"
	"fjc/design"
	"fjc/ir"
	"fjc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

func formatBindings(bs []binding.LayerBinding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		path := b.Path()
		if b.ContractPath.Key != "" {
			path = b.ContractPath.Key + "." + path
		}
		switch {
		case b.Attribute != "":
			path = b.Attribute + "=" + path
		case b.Property != "":
			path = "prop:" + b.Property + "=" + path
		}
		out = append(out, path)
	}
	return out
}

func formatExpressions(exprs []binding.VariantExpression) []string {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, fmt.Sprintf("%s %q %v", e.ID, e.Expression, e.References))
	}
	return out
}

// dumpTree returns readable form of intermediate tree for debug report.
func dumpTree(t *ir.Tree) string {
	if t == nil {
		return "<nil Tree>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Page route=%q name=%q", t.Route, t.Name)
	tw.irNode(1, t.Root)
	if len(t.Components) > 0 {
		tw.Line(0, "Component sets: %d", len(t.Components))
		for _, c := range t.Components {
			tw.irNode(1, c)
		}
	}
	return tw.String()
}

func (tw treeWriter) irNode(depth int, n *ir.Node) {
	if n == nil {
		return
	}
	tw.Line(depth, "%s [%s] %s", n.Kind, n.ID, n.SourcePath)
	tw.Field(depth+1, "name", n.Name)
	tw.Field(depth+1, "tag", n.Tag)
	tw.Field(depth+1, "style", css.Compose(n.Style))
	if n.Text != nil {
		tw.TextBlock(depth+1, "text", n.Text.Content)
		tw.Field(depth+1, "href", n.Text.Href)
	}
	if n.Image != nil {
		tw.Field(depth+1, "src", n.Image.Src)
		tw.Field(depth+1, "alt", n.Image.Alt)
		tw.Field(depth+1, "mime", n.Image.MimeType)
	}
	if v := n.Variant; v != nil {
		for _, p := range v.Properties {
			tw.Line(depth+1, "property %s %v boolean=%t", p.Name, p.Values, p.Boolean)
		}
		for _, a := range v.Assignments {
			tw.Line(depth+1, "assign %s=%s", a.Property, a.Value)
		}
		tw.Field(depth+1, "main", v.MainComponentID)
		tw.Field(depth+1, "set", v.SetID)
	}
	tw.List(depth+1, "bindings", formatBindings(n.Bindings))
	tw.List(depth+1, "expressions", formatExpressions(n.Expressions))
	for _, c := range n.Children {
		tw.irNode(depth+1, c)
	}
}

// dumpDocument returns readable form of vendor document for debug report.
func dumpDocument(d *design.Document) string {
	if d == nil || d.Root == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Document id=%q name=%q", d.ID, d.Name)
	tw.designNode(1, d.Root)
	if len(d.Components) > 0 {
		tw.Line(0, "Components: %d", len(d.Components))
		for _, c := range d.Components {
			tw.designNode(1, c)
		}
	}
	return tw.String()
}

func (tw treeWriter) designNode(depth int, n *design.Node) {
	tw.Line(depth, "%s [%s] %q", n.Kind, n.ID, n.Name)
	tw.Line(depth+1, "box %gx%g at %g,%g", n.Width, n.Height, n.X, n.Y)
	tw.Field(depth+1, "layout", n.LayoutMode)
	tw.Field(depth+1, "spacing", n.ItemSpacing)
	tw.Field(depth+1, "characters", n.Characters)
	tw.Field(depth+1, "main", n.MainComponentID)

	if len(n.PropertyDefinitions) > 0 {
		keys := slices.Collect(maps.Keys(n.PropertyDefinitions))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			p := n.PropertyDefinitions[k]
			tw.Line(depth+1, "property %s %s default=%q %v", k, p.Type, p.DefaultValue, p.VariantOptions)
		}
	}
	if len(n.VariantProperties) > 0 {
		keys := slices.Collect(maps.Keys(n.VariantProperties))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.Line(depth+1, "variant %s=%s", k, n.VariantProperties[k])
		}
	}
	if len(n.PluginData) > 0 {
		keys := slices.Collect(maps.Keys(n.PluginData))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.TextBlock(depth+1, "meta "+k, n.PluginData[k])
		}
	}
	for _, c := range n.Children {
		tw.designNode(depth+1, c)
	}
}
