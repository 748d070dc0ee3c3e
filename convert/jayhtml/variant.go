package jayhtml

import (
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"fjc/binding"
	"fjc/contract"
	"fjc/design"
	"fjc/diag"
)

// property is one variant dimension of an instance.
type property struct {
	name    string
	path    string
	values  []string
	boolean bool
}

// condition renders the if expression selecting value of the property.
func (p property) condition(value string) string {
	if p.boolean {
		if value == "true" {
			return p.path
		}
		return "!" + p.path
	}
	return p.path + " == " + value
}

// variant emits one conditional element per permutation of instance
// property values. Each element renders the component of the set matching
// the permutation exactly, or the first component of the set.
func (r *run) variant(n *design.Node, pv binding.PropertyVariant, lvl level) ([]etree.Token, error) {
	set := r.setOf(n)
	if set == nil {
		r.ws.Add(diag.NoVariantMatch, n.ID, "main component %q is not part of a component set, rendering instance as is", n.MainComponentID)
		return r.byKind(n, binding.None{}, lvl)
	}

	var props []property
	for _, name := range pv.Names() {
		tag := pv.Tags[name]
		values := declaredValues(set, name)
		if len(values) == 0 && tag != nil {
			values = tag.Values()
		}
		if len(values) == 0 {
			r.ws.Add(diag.NoVariantMatch, n.ID, "variant property %q has no values", name)
			continue
		}
		props = append(props, property{
			name:    name,
			path:    pv.Properties[name],
			values:  values,
			boolean: isBoolean(set, name, tag, values),
		})
	}
	if len(props) == 0 {
		return r.byKind(n, binding.None{}, lvl)
	}

	var out []etree.Token
	for _, perm := range permutations(props) {
		comp, exact := match(set, props, perm)
		if comp == nil {
			r.ws.Add(diag.NoVariantMatch, n.ID, "component set %q has no components", set.Name)
			return r.byKind(n, binding.None{}, lvl)
		}
		conds := make([]string, len(props))
		for i, p := range props {
			conds[i] = p.condition(perm[i])
		}
		if !exact {
			r.ws.Add(diag.NoVariantMatch, n.ID, "no component matches %s, using %q", strings.Join(conds, " && "), comp.Name)
		}

		el := r.element(comp, tagOf(comp, "div"))
		el.CreateAttr(binding.AttrIf, strings.Join(conds, " && "))
		content := bind(el, r.analyze(comp, lvl))
		setStyle(el, design.StyleOf(comp))
		if content != "" {
			el.SetText(content)
		}
		if err := r.children(el, comp.Children, lvl.down()); err != nil {
			return nil, err
		}
		out = append(out, el)
	}

	r.log.Debug("Variant instance expanded",
		zap.String("node", nodeRef(n)),
		zap.String("set", set.Name),
		zap.Int("permutations", len(out)))
	return out, nil
}

func (r *run) setOf(n *design.Node) *design.Node {
	main := r.index[n.MainComponentID]
	if main == nil {
		return nil
	}
	if p := r.parents[main.ID]; p != nil && p.Kind == design.KindComponentSet {
		return p
	}
	return nil
}

// declaredValues collects property values from set definitions, falling
// back to values used by components. Pseudo state values (containing ':')
// are not data driven and are skipped.
func declaredValues(set *design.Node, name string) []string {
	var raw []string
	if def, ok := set.PropertyDefinitions[name]; ok {
		if def.Type == design.PropertyBoolean {
			return []string{"false", "true"}
		}
		raw = def.VariantOptions
	}
	if len(raw) == 0 {
		for _, c := range set.Children {
			if v, ok := variantProperties(c)[name]; ok && !slices.Contains(raw, v) {
				raw = append(raw, v)
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if !strings.Contains(v, ":") {
			out = append(out, v)
		}
	}
	return out
}

func isBoolean(set *design.Node, name string, tag *contract.Tag, values []string) bool {
	if def, ok := set.PropertyDefinitions[name]; ok && def.Type == design.PropertyBoolean {
		return true
	}
	if tag == nil || !tag.IsBoolean() || len(values) != 2 {
		return false
	}
	v := slices.Sorted(slices.Values(values))
	return v[0] == "false" && v[1] == "true"
}

// permutations returns Cartesian product of property values, first property
// varying slowest.
func permutations(props []property) [][]string {
	out := [][]string{{}}
	for _, p := range props {
		next := make([][]string, 0, len(out)*len(p.values))
		for _, prefix := range out {
			for _, v := range p.values {
				next = append(next, append(slices.Clip(prefix), v))
			}
		}
		out = next
	}
	return out
}

// match finds component with exactly the permutation values. When none
// matches the first component is returned with exact set to false.
func match(set *design.Node, props []property, perm []string) (*design.Node, bool) {
	var first *design.Node
	for _, c := range set.Children {
		if c.Kind != design.KindComponent {
			continue
		}
		if first == nil {
			first = c
		}
		vp := variantProperties(c)
		ok := true
		for i, p := range props {
			if vp[p.name] != perm[i] {
				ok = false
				break
			}
		}
		if ok {
			return c, true
		}
	}
	return first, false
}

// variantProperties returns component assignments, parsing "p=v, q=w" names
// of components which do not carry them explicitly.
func variantProperties(c *design.Node) map[string]string {
	if len(c.VariantProperties) > 0 {
		return c.VariantProperties
	}
	m := make(map[string]string)
	for _, part := range strings.Split(c.Name, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m
}
