package condition_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"fjc/condition"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		expr string
		want []condition.Identifier
	}{
		{
			expr: "isActive",
			want: []condition.Identifier{{Path: "isActive"}},
		},
		{
			expr: "!isActive",
			want: []condition.Identifier{{Path: "isActive", Negated: true}},
		},
		{
			expr: "mediaType == IMAGE",
			want: []condition.Identifier{{Path: "mediaType", Operator: condition.OpEq, Value: "IMAGE"}},
		},
		{
			expr: "product.status != 'sold-out'",
			want: []condition.Identifier{{Path: "product.status", Operator: condition.OpNe, Value: "sold-out"}},
		},
		{
			expr: "count >= 10 && !hidden",
			want: []condition.Identifier{
				{Path: "count", Operator: condition.OpGe, Value: "10"},
				{Path: "hidden", Negated: true, Join: "&&", Group: 1},
			},
		},
		{
			expr: "0 < count",
			want: []condition.Identifier{{Path: "count", Operator: condition.OpGt, Value: "0"}},
		},
		{
			expr: "!(size == LARGE)",
			want: []condition.Identifier{{Path: "size", Operator: condition.OpEq, Value: "LARGE", Negated: true}},
		},
		{
			expr: "(a || b) && c",
			want: []condition.Identifier{
				{Path: "a"},
				{Path: "b", Join: "||"},
				{Path: "c", Join: "&&", Group: 1},
			},
		},
		{
			expr: "items.length > 0",
			want: []condition.Identifier{{Path: "items.length", Operator: condition.OpGt, Value: "0", Computed: true, Accessor: true}},
		},
		{
			expr: "size == LARGE",
			want: []condition.Identifier{{Path: "size", Operator: condition.OpEq, Value: "LARGE"}},
		},
		{
			expr: "length",
			want: []condition.Identifier{{Path: "length"}},
		},
		{
			expr: "product.size == L && isActive",
			want: []condition.Identifier{
				{Path: "product.size", Operator: condition.OpEq, Value: "L", Computed: true, Accessor: true},
				{Path: "isActive", Join: "&&", Group: 1},
			},
		},
		{
			expr: "isOpen ? a : b",
			want: []condition.Identifier{{Computed: true}},
		},
		{
			expr: "format(price) == '1'",
			want: []condition.Identifier{{Computed: true}},
		},
		{
			expr: "`${a}` == b || flag",
			want: []condition.Identifier{{Computed: true}, {Path: "flag", Join: "||", Group: 1}},
		},
		{
			expr: "label == 'a && b'",
			want: []condition.Identifier{{Path: "label", Operator: condition.OpEq, Value: "a && b"}},
		},
		{
			expr: "!(a || b)",
			want: []condition.Identifier{{Computed: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := condition.Tokenize(tt.expr)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) returned %d identifiers, want %d: %+v", tt.expr, len(got), len(tt.want), got)
			}
			for i := range got {
				g, w := got[i], tt.want[i]
				if g.Path != w.Path || g.Operator != w.Operator || g.Value != w.Value ||
					g.Negated != w.Negated || g.Computed != w.Computed || g.Accessor != w.Accessor ||
					g.Join != w.Join || g.Group != w.Group {
					t.Errorf("identifier %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestTokenize_RawPreserved(t *testing.T) {
	ids := condition.Tokenize("a == 1 &&   (b||c)")
	if len(ids) != 3 {
		t.Fatalf("expected 3 identifiers, got %d", len(ids))
	}
	if ids[0].Raw != "a == 1" || ids[1].Raw != "b" || ids[2].Raw != "c" {
		t.Errorf("raw text not preserved: %q %q %q", ids[0].Raw, ids[1].Raw, ids[2].Raw)
	}
}

func TestResolveAccessors(t *testing.T) {
	tags := map[string]bool{"product.size": true}
	isTag := func(p string) bool { return tags[p] }

	ids := condition.ResolveAccessors(condition.Tokenize("product.size == L || items.length > 0"), isTag)
	if len(ids) != 2 {
		t.Fatalf("expected 2 identifiers, got %+v", ids)
	}
	if ids[0].Computed || ids[0].Accessor || ids[0].Path != "product.size" || ids[0].Value != "L" {
		t.Errorf("tag path is still computed: %+v", ids[0])
	}
	if !ids[1].Computed || !ids[1].Accessor {
		t.Errorf("accessor without tag became plain: %+v", ids[1])
	}

	// resolved identifier takes part in evaluation
	if condition.Evaluate(ids[:1], map[string]string{"product.size": "M"}) {
		t.Error("product.size == L holds for M")
	}
}

func TestPaths(t *testing.T) {
	ids := condition.Tokenize("a == X || a == Y && !b || items.length > 1")
	paths := condition.Paths(ids)
	if strings.Join(paths, ",") != "a,b" {
		t.Errorf("Paths() = %v", paths)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr   string
		assign map[string]string
		want   bool
	}{
		{"mediaType == IMAGE", map[string]string{"mediaType": "IMAGE"}, true},
		{"mediaType == IMAGE", map[string]string{"mediaType": "VIDEO"}, false},
		{"!isActive", map[string]string{"isActive": "false"}, true},
		{"isActive && size == L", map[string]string{"isActive": "true", "size": "M"}, false},
		{"isActive || size == L", map[string]string{"isActive": "false", "size": "L"}, true},
		{"isActive || size == L", map[string]string{"isActive": "false", "size": "M"}, false},
		{"a && (b || c)", map[string]string{"a": "true", "b": "false", "c": "true"}, true},
		{"a && (b || c)", map[string]string{"a": "false", "b": "true", "c": "true"}, false},
		{"items.length > 0", map[string]string{}, true},
		{"count > 3", map[string]string{"count": "5"}, true},
	}
	for _, tt := range tests {
		if got := condition.Evaluate(condition.Tokenize(tt.expr), tt.assign); got != tt.want {
			t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.expr, tt.assign, got, tt.want)
		}
	}
}

// identGen produces simple identifier paths like "ab.cd".
func identGen() gopter.Gen {
	return gen.SliceOfN(2, gen.Identifier()).Map(func(parts []string) string {
		return strings.Join(parts, ".")
	}).SuchThat(func(s string) bool {
		for seg := range strings.SplitSeq(s, ".") {
			if seg == "length" || seg == "size" || seg == "" {
				return false
			}
		}
		return true
	})
}

func TestTokenize_OneIdentifierPerOperand(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every top level operand yields one identifier with its path", prop.ForAll(
		func(paths []string, values []string, useOr []bool) bool {
			if len(paths) == 0 {
				return true
			}
			var b strings.Builder
			for i, p := range paths {
				if i > 0 {
					if i < len(useOr) && useOr[i] {
						b.WriteString(" || ")
					} else {
						b.WriteString(" && ")
					}
				}
				b.WriteString(p)
				if i < len(values) {
					b.WriteString(" == ")
					b.WriteString(values[i])
				}
			}
			ids := condition.Tokenize(b.String())
			if len(ids) != len(paths) {
				return false
			}
			for i, id := range ids {
				if id.Path != paths[i] || id.Computed || id.Negated {
					return false
				}
				if i < len(values) && (id.Operator != condition.OpEq || id.Value != values[i]) {
					return false
				}
				if i >= len(values) && id.Operator != condition.OpNone {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(4, identGen()),
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("tokenizing is deterministic", prop.ForAll(
		func(expr string) bool {
			a, b := condition.Tokenize(expr), condition.Tokenize(expr)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
