package variant

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"fjc/binding"
	"fjc/condition"
	"fjc/contract"
	"fjc/diag"
	"fjc/ident"
	"fjc/ir"
)

// ErrNoPermutations is returned when conditions of a group yield no
// variant dimension.
var ErrNoPermutations = errors.New("variant group produces no permutations")

// DimensionKind tells how dimension values were collected.
type DimensionKind int

const (
	Enumerated DimensionKind = iota
	Boolean
)

// Dimension is one identifier path varying across group conditions.
type Dimension struct {
	Path    string
	Kind    DimensionKind
	Values  []string
	Tag     *contract.Tag
	Binding *binding.LayerBinding
}

// IsBoolean requires both boolean tag declaration and exactly false/true
// value set.
func (d Dimension) IsBoolean() bool {
	if d.Tag == nil || !d.Tag.IsBoolean() || len(d.Values) != 2 {
		return false
	}
	v := slices.Sorted(slices.Values(d.Values))
	return v[0] == "false" && v[1] == "true"
}

// BuildFunc builds IR subtree for a group member.
type BuildFunc func(member *html.Node, scope binding.Scope) (*ir.Node, []diag.Warning, error)

// Result of synthesis: component set for the document component library and
// instance replacing group members in the tree.
type Result struct {
	Set      *ir.Node
	Instance *ir.Node
}

// Synthesizer builds component sets from conditional groups.
type Synthesizer struct {
	log *zap.Logger
	ids *ident.Generator
	x   *binding.Extractor
}

// New returns synthesizer.
func New(ids *ident.Generator, x *binding.Extractor, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = ident.New(ident.DefaultLength)
	}
	if x == nil {
		x = binding.NewExtractor(ids, log)
	}
	return &Synthesizer{log: log.Named("variant"), ids: ids, x: x}
}

type dimAcc struct {
	path     string
	literals []string
	bare     bool
}

// Dimensions classifies every identifier path of the group conditions.
// Equality comparisons with literals make enumerated dimensions, bare or
// negated identifiers make boolean ones. Computed and relational operands are
// reported and excluded.
func (s *Synthesizer) Dimensions(g Group, scope binding.Scope, node string) ([]Dimension, []diag.Warning) {
	var (
		ws    diag.List
		order []*dimAcc
		byKey = make(map[string]*dimAcc)
	)
	get := func(path string) *dimAcc {
		d, ok := byKey[path]
		if !ok {
			d = &dimAcc{path: path}
			byKey[path] = d
			order = append(order, d)
		}
		return d
	}

	for _, cond := range g.Conditions {
		for _, id := range tokenize(cond, scope) {
			switch {
			case id.Computed:
				ws.Add(diag.ComputedCondition, node, "operand %q of condition %q is computed and cannot be a variant dimension", id.Raw, cond)
			case id.Operator == condition.OpEq || id.Operator == condition.OpNe:
				d := get(id.Path)
				if !slices.Contains(d.literals, id.Value) {
					d.literals = append(d.literals, id.Value)
				}
			case id.Operator == condition.OpNone:
				get(id.Path).bare = true
			default:
				ws.Add(diag.ComputedCondition, node, "relational operand %q of condition %q cannot be a variant dimension", id.Raw, cond)
			}
		}
	}

	dims := make([]Dimension, 0, len(order))
	for _, acc := range order {
		d := Dimension{Path: acc.path}
		if b, tag, ok := scope.ResolveTag(acc.path); ok {
			d.Binding, d.Tag = &b, tag
		} else {
			ws.Add(diag.UnresolvedBinding, node, "condition path %q is not in the contract", acc.path)
		}

		switch {
		case len(acc.literals) == 0:
			d.Kind, d.Values = Boolean, []string{"false", "true"}
		case d.Tag != nil && d.Tag.IsBoolean() && onlyBooleans(acc.literals):
			d.Kind, d.Values = Boolean, []string{"false", "true"}
		default:
			d.Kind, d.Values = Enumerated, orderValues(acc.literals, d.Tag)
			if acc.bare {
				ws.Add(diag.AmbiguousBinding, node, "path %q is used both as boolean and compared with literals", acc.path)
			}
		}
		dims = append(dims, d)
	}
	return dims, ws
}

// Synthesize builds component set with one component per permutation of the
// group dimensions and an instance pointing at the first component. Base
// seeds generated ids, normally the DOM path of the first member.
func (s *Synthesizer) Synthesize(g Group, scope binding.Scope, base string, build BuildFunc) (Result, []diag.Warning, error) {
	dims, ws := s.Dimensions(g, scope, base)
	perms := product(dims)
	if len(perms) == 0 {
		return Result{}, ws, fmt.Errorf("group [%s]: %w", strings.Join(g.Conditions, "; "), ErrNoPermutations)
	}

	tokens := make([][]condition.Identifier, len(g.Conditions))
	for i, c := range g.Conditions {
		tokens[i] = tokenize(c, scope)
	}

	// every permutation is rendered by the first member whose condition holds
	matches := make([]int, len(perms))
	counts := make([]int, len(g.Members))
	for pi, perm := range perms {
		matches[pi] = -1
		for mi := range g.Members {
			if condition.Evaluate(tokens[mi], assignment(dims, perm)) {
				matches[pi] = mi
				counts[mi]++
				break
			}
		}
	}

	var (
		list  = diag.List(ws)
		used  = make([]int, len(g.Members))
		seeds = append([]string{}, g.Conditions...)
		set   = &ir.Node{
			ID:      s.ids.Seeded(base, append([]string{"component-set"}, seeds...)...),
			Kind:    ir.KindComponentSet,
			Name:    setName(dims),
			Variant: &ir.Variant{},
		}
	)
	for _, d := range dims {
		set.Variant.Properties = append(set.Variant.Properties, ir.Property{
			Name:    d.Path,
			Values:  slices.Clone(d.Values),
			Boolean: d.IsBoolean(),
		})
	}

	for pi, perm := range perms {
		name := permName(dims, perm)
		comp := &ir.Node{
			Kind:    ir.KindComponent,
			Name:    name,
			Tag:     "div",
			Variant: &ir.Variant{},
		}
		for i, d := range dims {
			comp.Variant.Assignments = append(comp.Variant.Assignments, ir.Assignment{Property: d.Path, Value: perm[i]})
		}

		mi := matches[pi]
		if mi >= 0 && counts[mi] == 1 && ident.Existing(g.Members[mi]) != "" {
			comp.ID = ident.Existing(g.Members[mi])
		} else {
			comp.ID = s.ids.Seeded(base, append(slices.Clone(seeds), name)...)
		}

		if mi >= 0 {
			child, cws, err := build(g.Members[mi], scope)
			list.Append(cws...)
			if err != nil {
				return Result{}, list, fmt.Errorf("variant %q: %w", name, err)
			}
			child.Expressions = nil
			if used[mi] > 0 {
				s.reseed(child, name)
			}
			used[mi]++

			comp.SourcePath = child.SourcePath
			if child.Kind == ir.KindFrame {
				comp.Style, comp.Tag = child.Style, child.Tag
				comp.Bindings, comp.Children = child.Bindings, child.Children
			} else {
				if child.ID == comp.ID {
					child.ID = s.ids.Seeded(comp.ID, "content")
				}
				comp.Children = []*ir.Node{child}
			}
		} else {
			s.log.Debug("No member matches permutation", zap.String("variant", name), zap.String("base", base))
		}
		set.Children = append(set.Children, comp)
	}

	inst := &ir.Node{
		ID:   s.ids.Seeded(base, append([]string{"instance"}, seeds...)...),
		Kind: ir.KindInstance,
		Name: set.Name,
		Tag:  "div",
		Variant: &ir.Variant{
			MainComponentID: set.Children[0].ID,
			SetID:           set.ID,
		},
	}
	for _, d := range dims {
		if d.Binding == nil {
			continue
		}
		b := *d.Binding
		b.Property = d.Path
		inst.Bindings = append(inst.Bindings, b)
	}
	for _, c := range slices.Sorted(slices.Values(g.Conditions)) {
		inst.Expressions = append(inst.Expressions, s.x.Expression(c, base))
	}
	return Result{Set: set, Instance: inst}, list, nil
}

// reseed makes ids of a repeated member subtree unique per permutation.
func (s *Synthesizer) reseed(n *ir.Node, name string) {
	n.Walk(func(c *ir.Node) bool {
		c.ID = s.ids.Seeded(c.ID, name)
		return true
	})
}

// tokenize parses condition, accessor looking paths which are contract tags
// (a tag named size under product, say) stay plain identifiers.
func tokenize(cond string, scope binding.Scope) []condition.Identifier {
	return condition.ResolveAccessors(condition.Tokenize(cond), func(path string) bool {
		_, _, ok := scope.ResolveTag(path)
		return ok
	})
}

// product returns Cartesian product of dimension values, first dimension
// varying slowest.
func product(dims []Dimension) [][]string {
	if len(dims) == 0 {
		return nil
	}
	out := [][]string{{}}
	for _, d := range dims {
		if len(d.Values) == 0 {
			return nil
		}
		next := make([][]string, 0, len(out)*len(d.Values))
		for _, p := range out {
			for _, v := range d.Values {
				next = append(next, append(slices.Clip(p), v))
			}
		}
		out = next
	}
	return out
}

func assignment(dims []Dimension, perm []string) map[string]string {
	m := make(map[string]string, len(dims))
	for i, d := range dims {
		m[d.Path] = perm[i]
	}
	return m
}

// PermutationName formats property assignments as "p=v, q=w".
func PermutationName(props, values []string) string {
	parts := make([]string, len(props))
	for i := range props {
		parts[i] = props[i] + "=" + values[i]
	}
	return strings.Join(parts, ", ")
}

func permName(dims []Dimension, perm []string) string {
	props := make([]string, len(dims))
	for i, d := range dims {
		props[i] = d.Path
	}
	return PermutationName(props, perm)
}

func setName(dims []Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Path
	}
	return strings.Join(names, " / ")
}

func onlyBooleans(vs []string) bool {
	for _, v := range vs {
		if v != "true" && v != "false" {
			return false
		}
	}
	return true
}

// orderValues puts literals declared by enum tag in declaration order,
// undeclared ones follow in order of appearance.
func orderValues(lits []string, tag *contract.Tag) []string {
	if tag == nil || tag.DataType.Kind != contract.KindEnum {
		return slices.Clone(lits)
	}
	out := make([]string, 0, len(lits))
	for _, v := range tag.DataType.Values {
		if slices.Contains(lits, v) {
			out = append(out, v)
		}
	}
	for _, v := range lits {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
