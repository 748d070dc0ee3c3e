// Package variant turns groups of sibling conditional elements into
// component sets with one component per permutation of their conditions.
package variant

import (
	"strings"

	"golang.org/x/net/html"

	"fjc/binding"
)

// Group is a run of consecutive sibling elements each carrying a condition.
type Group struct {
	Members    []*html.Node
	Conditions []string
}

// Contains reports whether element is a member of the group.
func (g Group) Contains(el *html.Node) bool {
	for _, m := range g.Members {
		if m == el {
			return true
		}
	}
	return false
}

// nonVisual elements carry no visual content and are passed over.
var nonVisual = map[string]bool{
	"script": true, "style": true, "link": true, "meta": true, "template": true,
	"noscript": true, "title": true, "head": true,
}

// IsNonVisual reports whether element with the given tag has no visual
// content of its own.
func IsNonVisual(tag string) bool {
	return nonVisual[tag]
}

// DetectGroups scans element children of parent in order, non visual
// elements and text are passed over. Runs of at least two consecutive
// conditional elements form groups, a single conditional element or a run
// interrupted by another element does not.
func DetectGroups(parent *html.Node) []Group {
	var (
		groups []Group
		cur    Group
	)
	flush := func() {
		if len(cur.Members) >= 2 {
			groups = append(groups, cur)
		}
		cur = Group{}
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || IsNonVisual(c.Data) {
			continue
		}
		cond := strings.TrimSpace(attr(c, binding.AttrIf))
		if cond == "" {
			flush()
			continue
		}
		cur.Members = append(cur.Members, c)
		cur.Conditions = append(cur.Conditions, cond)
	}
	flush()
	return groups
}

func attr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.ToLower(a.Key) == key {
			return a.Val
		}
	}
	return ""
}
