// Package ir is the vendor agnostic intermediate tree produced by import
// from parsed Jay HTML and consumed by the design document adapter.
package ir

import (
	"fmt"

	"fjc/binding"
	"fjc/css"
)

// Kind is the IR node kind.
type Kind int

const (
	KindSection Kind = iota
	KindFrame
	KindText
	KindImage
	KindRepeater
	KindComponentSet
	KindComponent
	KindInstance
)

var kindNames = [...]string{
	KindSection:      "SECTION",
	KindFrame:        "FRAME",
	KindText:         "TEXT",
	KindImage:        "IMAGE",
	KindRepeater:     "REPEATER",
	KindComponentSet: "COMPONENT_SET",
	KindComponent:    "COMPONENT",
	KindInstance:     "INSTANCE",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Text is payload of TEXT nodes.
type Text struct {
	Content string
	Href    string
}

// Image is payload of IMAGE nodes.
type Image struct {
	Src      string
	Alt      string
	MimeType string
}

// Property is a variant property definition of a component set.
type Property struct {
	Name    string
	Values  []string
	Boolean bool
}

// Assignment is one property value of a synthesized component.
type Assignment struct {
	Property string
	Value    string
}

// Variant is payload of nodes taking part in variant synthesis. Component
// sets fill Properties, components fill Assignments, instances point to their
// main component and set.
type Variant struct {
	Properties      []Property
	Assignments     []Assignment
	MainComponentID string
	SetID           string
}

// Node is one IR tree node.
type Node struct {
	ID          string
	SourcePath  string
	Kind        Kind
	Name        string
	Tag         string
	Style       css.Style
	Text        *Text
	Image       *Image
	Variant     *Variant
	Bindings    []binding.LayerBinding
	Expressions []binding.VariantExpression
	Children    []*Node
}

// Walk visits node and its descendants depth first, stopping descent when fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree is the import result: page root and component sets synthesized while
// building it.
type Tree struct {
	Route      string
	Name       string
	Root       *Node
	Components []*Node
}
