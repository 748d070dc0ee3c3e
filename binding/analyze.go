package binding

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"fjc/contract"
	"fjc/diag"
)

// Analysis is the classification of all bindings of one design node. Exactly
// one of the concrete types below is produced per node.
type Analysis interface {
	isAnalysis()
}

type (
	// None - node has no resolvable bindings.
	None struct{}

	// DynamicContent - text content comes from a data tag.
	DynamicContent struct {
		Path string
	}

	// Interactive - node is an interactive element referenced by ref.
	Interactive struct {
		Ref string
	}

	// Dual - tag is both data and interactive, node gets content and ref.
	Dual struct {
		Path string
		Ref  string
	}

	// Attribute - attribute name to path, with optional dynamic content
	// merged from a content binding.
	Attribute struct {
		Attributes map[string]string
		Content    string
	}

	// PropertyVariant - variant property name to path and contract tag.
	PropertyVariant struct {
		Properties map[string]string
		Tags       map[string]*contract.Tag
	}

	// Repeater - node is bound to a repeated tag, also describes forEach/trackBy
	// pair found on import. Path is relative to the enclosing repeater,
	// FullPath is the path from the contract root including usage key.
	Repeater struct {
		Path     string
		FullPath string
		TrackBy  string
	}
)

func (None) isAnalysis()            {}
func (DynamicContent) isAnalysis()  {}
func (Interactive) isAnalysis()     {}
func (Dual) isAnalysis()            {}
func (Attribute) isAnalysis()       {}
func (PropertyVariant) isAnalysis() {}
func (Repeater) isAnalysis()        {}

// Names returns property names in stable order.
func (p PropertyVariant) Names() []string {
	return slices.Sorted(maps.Keys(p.Properties))
}

// Names returns attribute names in stable order.
func (a Attribute) Names() []string {
	return slices.Sorted(maps.Keys(a.Attributes))
}

// resolved is a raw binding matched against its contract.
type resolved struct {
	LayerBinding
	tag  *contract.Tag
	full string // usage key prefixed dotted path
	rel  string // full with innermost repeater stripped
}

// Analyzer classifies design node bindings against contracts.
type Analyzer struct {
	log *zap.Logger
}

// NewAnalyzer returns analyzer.
func NewAnalyzer(log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{log: log.Named("binding-analyzer")}
}

// Analyze resolves raw bindings of node and classifies them. Precedence is
// repeater, property variant, attribute, content. Problems are returned as
// warnings.
func (a *Analyzer) Analyze(raw []LayerBinding, scope Scope, node string) (Analysis, []diag.Warning) {
	var (
		ws   diag.List
		res  []resolved
		seen = make(map[string]bool)
	)
	for _, b := range raw {
		r, ok := a.resolve(b, scope, node, &ws)
		if !ok {
			continue
		}
		key := r.full + "|" + r.Attribute + "|" + r.Property
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, r)
	}
	if len(res) == 0 {
		return None{}, ws
	}

	for _, r := range res {
		if r.tag.Repeated {
			if len(res) > 1 {
				a.log.Debug("Repeater binding overrides other bindings", zap.String("node", node), zap.Int("count", len(res)))
			}
			return Repeater{Path: r.rel, FullPath: r.full, TrackBy: r.tag.TrackBy}, ws
		}
	}

	if slices.ContainsFunc(res, func(r resolved) bool { return r.Property != "" }) {
		pv := PropertyVariant{Properties: make(map[string]string), Tags: make(map[string]*contract.Tag)}
		for _, r := range res {
			switch {
			case r.Property != "":
				pv.Properties[r.Property] = r.rel
				pv.Tags[r.Property] = r.tag
			case r.Attribute != "":
				ws.Add(diag.InvalidBindingMix, node, "property variant node carries attribute binding %q (%s), ignored", r.Attribute, r.full)
			default:
				ws.Add(diag.InvalidBindingMix, node, "property variant node carries content binding %s, ignored", r.full)
			}
		}
		return pv, ws
	}

	var (
		attrs   map[string]string
		content []resolved
	)
	for _, r := range res {
		if r.Attribute == "" {
			content = append(content, r)
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		if prev, ok := attrs[r.Attribute]; ok {
			ws.Add(diag.AmbiguousBinding, node, "attribute %q bound to both %s and %s, keeping first", r.Attribute, prev, r.rel)
			continue
		}
		attrs[r.Attribute] = r.rel
	}

	if len(content) > 1 {
		paths := make([]string, 0, len(content))
		for _, c := range content {
			paths = append(paths, c.full)
		}
		ws.Add(diag.AmbiguousBinding, node, "multiple content bindings (%s), using %s", strings.Join(paths, ", "), paths[0])
	}

	if attrs != nil {
		out := Attribute{Attributes: attrs}
		if len(content) > 0 {
			c := content[0]
			if c.tag.IsInteractive() {
				ws.Add(diag.InvalidBindingMix, node, "interactive tag %s on node with attribute bindings", c.full)
			}
			if c.tag.IsData() {
				out.Content = c.rel
			}
		}
		return out, ws
	}

	c := content[0]
	switch {
	case c.tag.IsData() && c.tag.IsInteractive():
		return Dual{Path: c.rel, Ref: c.rel}, ws
	case c.tag.IsInteractive():
		return Interactive{Ref: c.rel}, ws
	default:
		return DynamicContent{Path: c.rel}, ws
	}
}

// resolve finds contract and tag for raw binding and computes its paths.
func (a *Analyzer) resolve(b LayerBinding, scope Scope, node string, ws *diag.List) (resolved, bool) {
	if len(b.TagPath) == 0 {
		ws.Add(diag.UnresolvedBinding, node, "binding without tag path skipped")
		return resolved{}, false
	}

	var (
		c   *contract.Contract
		key string
	)
	cp := b.ContractPath
	switch {
	case !cp.IsHeadless():
		if scope.Page != nil {
			c = scope.Page.Contract
		}
	case cp.Key != "":
		u := scope.Page.Usage(cp.Key)
		if u == nil {
			if cp.PluginName != "" && !scope.Page.HasPlugin(cp.PluginName) {
				ws.Add(diag.UnresolvedPlugin, node, "plugin %q is not used on the page", cp.PluginName)
			} else {
				ws.Add(diag.UnresolvedComponent, node, "component usage %q (%s/%s) not found", cp.Key, cp.PluginName, cp.ComponentName)
			}
			return resolved{}, false
		}
		c, key = u.Contract, u.Key
	default:
		us := scope.Page.UsagesOf(cp.PluginName, cp.ComponentName)
		if len(us) == 0 {
			if !scope.Page.HasPlugin(cp.PluginName) {
				ws.Add(diag.UnresolvedPlugin, node, "plugin %q is not used on the page", cp.PluginName)
			} else {
				ws.Add(diag.UnresolvedComponent, node, "component %q of plugin %q not found", cp.ComponentName, cp.PluginName)
			}
			return resolved{}, false
		}
		if len(us) > 1 {
			ws.Add(diag.AmbiguousBinding, node, "component %s/%s used %d times, binding to usage %q", cp.PluginName, cp.ComponentName, len(us), us[0].Key)
		}
		c, key = us[0].Contract, us[0].Key
	}

	path := b.Path()
	if c == nil {
		ws.Add(diag.UnresolvedBinding, node, "no contract to resolve %q", path)
		return resolved{}, false
	}
	tag := c.Tag(path)
	if tag == nil {
		ws.Add(diag.UnresolvedBinding, node, "tag %q not found in contract %q", path, c.Name)
		return resolved{}, false
	}

	full := path
	if key != "" {
		full = key + "." + path
	}
	return resolved{LayerBinding: b, tag: tag, full: full, rel: scope.Relative(full)}, true
}
