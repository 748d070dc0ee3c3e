package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"fjc/binding"
)

// Metadata keys stored in node plugin data.
const (
	MetaPage        = "jpage"
	MetaRoute       = "urlRoute"
	MetaBindings    = "jay-layer-bindings"
	MetaSemantic    = "semanticHtml"
	MetaCondition   = "jay-condition"
	MetaExpressions = "jay-variant-expressions"
)

// SchemaVersion of documents produced by this package.
const SchemaVersion = "1.0.0"

// namespace for deterministic document ids.
var namespace = uuid.MustParse("5b7f6c1e-3c0a-4e43-9b9e-2f1c7d0a8e51")

// Document is the vendor document: a page root plus component library.
type Document struct {
	SchemaVersion string  `json:"schemaVersion"`
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Root          *Node   `json:"document"`
	Components    []*Node `json:"components,omitempty"`
}

// NewDocument creates document with id derived from route so that repeated
// imports of the same page produce the same id.
func NewDocument(name, route string, root *Node) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewSHA1(namespace, []byte(route)).String(),
		Name:          name,
		Root:          root,
	}
}

// IsPage reports whether node carries page marker and route.
func IsPage(n *Node) bool {
	return n != nil && n.Meta(MetaPage) != "" && n.Meta(MetaRoute) != ""
}

// MarkPage sets page marker and route on node.
func MarkPage(n *Node, route string) {
	n.SetMeta(MetaPage, "true")
	n.SetMeta(MetaRoute, route)
}

// Bindings decodes serialized bindings of the node.
func Bindings(n *Node) ([]binding.LayerBinding, error) {
	s := n.Meta(MetaBindings)
	if s == "" {
		return nil, nil
	}
	return binding.Decode(s)
}

// SetBindings serializes bindings into node metadata.
func SetBindings(n *Node, bs []binding.LayerBinding) error {
	if len(bs) == 0 {
		n.SetMeta(MetaBindings, "")
		return nil
	}
	s, err := binding.Encode(bs)
	if err != nil {
		return err
	}
	n.SetMeta(MetaBindings, s)
	return nil
}

// Expressions decodes variant expressions recorded on instance node.
func Expressions(n *Node) ([]binding.VariantExpression, error) {
	s := n.Meta(MetaExpressions)
	if s == "" {
		return nil, nil
	}
	var out []binding.VariantExpression
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("malformed variant expressions: %w", err)
	}
	return out, nil
}

// SetExpressions stores variant expressions in node metadata.
func SetExpressions(n *Node, exprs []binding.VariantExpression) error {
	if len(exprs) == 0 {
		n.SetMeta(MetaExpressions, "")
		return nil
	}
	data, err := json.Marshal(exprs)
	if err != nil {
		return fmt.Errorf("unable to encode variant expressions: %w", err)
	}
	n.SetMeta(MetaExpressions, string(data))
	return nil
}

// Index maps node ids to nodes over the page tree and the component library.
func (d *Document) Index() map[string]*Node {
	idx := make(map[string]*Node)
	add := func(n *Node) bool {
		idx[n.ID] = n
		return true
	}
	d.Root.Walk(add)
	for _, c := range d.Components {
		c.Walk(add)
	}
	return idx
}

// Marshal produces canonical JSON (RFC 8785) indented for readability.
// Identical documents always produce identical bytes.
func Marshal(d *Document) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("unable to encode document: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to canonicalize document: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, canon, "", "  "); err != nil {
		return nil, fmt.Errorf("unable to indent document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Unmarshal decodes document, unknown fields are rejected.
func Unmarshal(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("unable to decode document: %w", err)
	}
	if d.Root == nil {
		return nil, fmt.Errorf("document has no root node")
	}
	return &d, nil
}
