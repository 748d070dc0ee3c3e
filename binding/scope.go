package binding

import (
	"slices"
	"strings"

	"fjc/contract"
)

// Scope is the binding resolution context for one tree level. It is passed
// by value, WithRepeater never modifies the receiver so sibling subtrees do
// not observe each other's repeaters.
type Scope struct {
	Page      *contract.Page
	PageURL   string
	SectionID string

	repeaters []string
}

// NewScope creates top level scope for the page.
func NewScope(page *contract.Page, sectionID string) Scope {
	s := Scope{Page: page, SectionID: sectionID}
	if page != nil {
		s.PageURL = page.Route
	}
	return s
}

// WithRepeater returns scope with full repeater path pushed.
func (s Scope) WithRepeater(fullPath string) Scope {
	s.repeaters = append(slices.Clip(s.repeaters), fullPath)
	return s
}

// Repeaters returns active repeater paths, outermost first.
func (s Scope) Repeaters() []string {
	return slices.Clone(s.repeaters)
}

// Innermost returns innermost active repeater path or empty string.
func (s Scope) Innermost() string {
	if len(s.repeaters) == 0 {
		return ""
	}
	return s.repeaters[len(s.repeaters)-1]
}

// Relative strips innermost repeater prefix from full path. Paths outside of
// the innermost repeater are returned unchanged.
func (s Scope) Relative(full string) string {
	if r := s.Innermost(); r != "" && strings.HasPrefix(full, r+".") {
		return full[len(r)+1:]
	}
	return full
}

// target is a resolved contract position.
type target struct {
	path    ContractPath
	tagPath []string
	tag     *contract.Tag
	full    string
}

// lookupFull resolves path from the contract root. A leading segment naming
// a component usage key switches to that usage contract.
func (s Scope) lookupFull(full string) (target, bool) {
	if s.Page == nil || full == "" {
		return target{}, false
	}
	cp := ContractPath{PageURL: s.PageURL}
	segs := strings.Split(full, ".")
	if u := s.Page.Usage(segs[0]); u != nil && len(segs) > 1 && u.Contract != nil {
		if chain, ok := u.Contract.Lookup(strings.Join(segs[1:], ".")); ok {
			cp.PluginName, cp.ComponentName, cp.Key = u.Plugin, u.Component, u.Key
			return target{path: cp, tagPath: segs[1:], tag: chain[len(chain)-1], full: full}, true
		}
	}
	chain, ok := s.Page.Contract.Lookup(full)
	if !ok {
		return target{}, false
	}
	return target{path: cp, tagPath: segs, tag: chain[len(chain)-1], full: full}, true
}

// lookupWritten resolves path as written in markup. Inside repeaters the
// innermost repeater prefix is tried first, then the outer ones, then the
// contract root.
func (s Scope) lookupWritten(written string) (target, bool) {
	for i := len(s.repeaters) - 1; i >= 0; i-- {
		if t, ok := s.lookupFull(s.repeaters[i] + "." + written); ok {
			return t, true
		}
	}
	return s.lookupFull(written)
}

// ResolveTag resolves path as written in markup and returns binding for it
// together with the contract tag.
func (s Scope) ResolveTag(written string) (LayerBinding, *contract.Tag, bool) {
	t, ok := s.lookupWritten(written)
	if !ok {
		return LayerBinding{}, nil, false
	}
	return s.binding(t), t.tag, true
}

func (s Scope) binding(t target) LayerBinding {
	return LayerBinding{
		ContractPath: t.path,
		SectionID:    s.SectionID,
		TagPath:      slices.Clone(t.tagPath),
	}
}
