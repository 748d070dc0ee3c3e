package contract_test

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"fjc/contract"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in      string
		want    contract.DataType
		wantErr bool
	}{
		{"string", contract.DataType{Kind: contract.KindString}, false},
		{"Boolean", contract.DataType{Kind: contract.KindBoolean}, false},
		{"enum (IMAGE | VIDEO)", contract.DataType{Kind: contract.KindEnum, Values: []string{"IMAGE", "VIDEO"}}, false},
		{"enum(a|b|c)", contract.DataType{Kind: contract.KindEnum, Values: []string{"a", "b", "c"}}, false},
		{"", contract.DataType{}, false},
		{"enum ()", contract.DataType{}, true},
		{"enum A", contract.DataType{}, true},
		{"blob", contract.DataType{}, true},
	}
	for _, tt := range tests {
		got, err := contract.ParseDataType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDataType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got.Kind != tt.want.Kind || !slices.Equal(got.Values, tt.want.Values) {
			t.Errorf("ParseDataType(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := contract.Decode(strings.NewReader("name: x\ntags:\n  - tag: a\n    typo: data\n"))
	if err == nil {
		t.Fatal("unknown fields must be rejected")
	}
	_, err = contract.Decode(strings.NewReader("tags:\n  - tag: a\n    type: bogus\n"))
	if err == nil {
		t.Fatal("unknown tag type must be rejected")
	}
}

func TestLoadPage(t *testing.T) {
	p, err := contract.LoadPage(filepath.Join("testdata", "page.yaml"))
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}
	if p.Route != "/products/:slug" {
		t.Errorf("route = %q", p.Route)
	}
	if p.Contract == nil || p.Contract.Name != "product-page" {
		t.Fatalf("page contract not loaded: %+v", p.Contract)
	}

	u := p.Usage("cart")
	if u == nil || u.Contract == nil || u.Contract.Name != "cart-indicator" {
		t.Fatalf("usage contract not loaded: %+v", u)
	}
	if !p.HasPlugin("wix-stores") || p.HasPlugin("other") {
		t.Error("plugin lookup is wrong")
	}
	if got := p.UsagesOf("wix-stores", "cart-indicator"); len(got) != 1 {
		t.Errorf("UsagesOf() = %v", got)
	}
}

func TestLookup(t *testing.T) {
	c, err := contract.LoadContract(filepath.Join("testdata", "product.jay-contract"))
	if err != nil {
		t.Fatalf("LoadContract() error = %v", err)
	}

	chain, ok := c.Lookup("items.name")
	if !ok || len(chain) != 2 || !chain[0].Repeated || chain[0].TrackBy != "id" {
		t.Fatalf("Lookup(items.name) = %v, %v", chain, ok)
	}
	if _, ok := c.Lookup("items.missing"); ok {
		t.Fatal("missing tag must not resolve")
	}

	q := c.Tag("quantity")
	if q == nil || !q.IsData() || !q.IsInteractive() {
		t.Fatalf("quantity must be data and interactive: %+v", q)
	}
	a := c.Tag("addToCart")
	if a == nil || a.IsData() || !a.IsInteractive() {
		t.Fatalf("addToCart must be interactive only: %+v", a)
	}
	if m := c.Tag("mediaType"); m == nil || !slices.Equal(m.Values(), []string{"IMAGE", "VIDEO"}) || m.IsBoolean() {
		t.Fatalf("mediaType values: %+v", m)
	}
	if b := c.Tag("isOnSale"); b == nil || !b.IsBoolean() || !slices.Equal(b.Values(), []string{"false", "true"}) {
		t.Fatalf("isOnSale: %+v", b)
	}

	var paths []string
	c.Walk(func(p string, _ *contract.Tag) { paths = append(paths, p) })
	if !slices.Contains(paths, "items.image") || len(paths) != 10 {
		t.Errorf("Walk() = %v", paths)
	}
}

func TestTypeString(t *testing.T) {
	if got := (contract.TypeData | contract.TypeInteractive).String(); got != "data, interactive" {
		t.Errorf("String() = %q", got)
	}
}
