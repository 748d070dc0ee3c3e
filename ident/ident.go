// Package ident produces deterministic content addressed identifiers for
// imported nodes.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// RoundTripAttr marks elements produced by export, its value is the original
// design node id.
const RoundTripAttr = "data-figma-id"

// DefaultLength is number of hex characters in generated ids.
const DefaultLength = 16

// anchorAttrs are attributes contributing to semantic anchors, in prefix form.
var anchorAttrs = []string{"id", "ref", "class", "data-testid"}

// Generator hashes DOM paths into ids of fixed length.
type Generator struct {
	length int
}

// New returns generator producing ids of given length. Length outside of
// (0, 64] selects DefaultLength.
func New(length int) *Generator {
	if length <= 0 || length > sha256.Size*2 {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate returns existing when it is not empty. Otherwise it hashes domPath
// together with sorted anchors.
func (g *Generator) Generate(domPath string, anchors []string, existing string) string {
	if existing != "" {
		return existing
	}
	sorted := slices.Clone(anchors)
	slices.Sort(sorted)

	h := sha256.New()
	h.Write([]byte(domPath))
	for _, a := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return hex.EncodeToString(h.Sum(nil))[:g.length]
}

// Seeded derives id from a base id and additional seed strings, used for
// synthesized nodes which have no element of their own.
func (g *Generator) Seeded(base string, seeds ...string) string {
	return g.Generate(base, seeds, "")
}

// ForElement generates id for element relative to root, honoring round trip
// marker.
func (g *Generator) ForElement(el, root *html.Node) string {
	return g.Generate(ElementPath(el, root), Anchors(el), Existing(el))
}

// Existing returns round trip marker of the element if present.
func Existing(el *html.Node) string {
	return attr(el, RoundTripAttr)
}

// ElementPath builds "roottag/i/j/..." path from root down to el where every
// index is zero based position among element siblings. Element outside of
// root gets path relative to its topmost ancestor.
func ElementPath(el, root *html.Node) string {
	var idx []string
	top := el
	for n := el; n != nil && n != root; n = n.Parent {
		idx = append(idx, strconv.Itoa(elementIndex(n)))
		top = n
	}
	if root == nil || !isAncestor(root, el) {
		root = top
	}
	slices.Reverse(idx)

	var b strings.Builder
	b.WriteString(root.Data)
	for _, i := range idx {
		b.WriteByte('/')
		b.WriteString(i)
	}
	return b.String()
}

// ChildPath extends element path with a position, used for nodes created from
// text runs which are not elements.
func ChildPath(parentPath string, kind string, pos int) string {
	return parentPath + "/" + kind + strconv.Itoa(pos)
}

// Anchors returns semantic anchors of the element in "name:value" form.
func Anchors(el *html.Node) []string {
	if el == nil {
		return nil
	}
	var out []string
	for _, name := range anchorAttrs {
		if v := strings.TrimSpace(attr(el, name)); v != "" {
			out = append(out, name+":"+v)
		}
	}
	return out
}

func elementIndex(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			i++
		}
	}
	return i
}

func isAncestor(a, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
