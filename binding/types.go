// Package binding connects UI positions to contract tag paths in both
// directions: Analyzer classifies bindings stored on design nodes, Extractor
// reconstructs them from Jay HTML markup.
package binding

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ContractPath identifies contract a binding refers to. Key is set for
// headless component usages, empty for the page contract.
type ContractPath struct {
	PageURL       string `json:"pageUrl"`
	PluginName    string `json:"pluginName,omitempty"`
	ComponentName string `json:"componentName,omitempty"`
	Key           string `json:"key,omitempty"`
}

// IsHeadless reports whether path refers to a component usage.
func (c ContractPath) IsHeadless() bool {
	return c.Key != "" || c.PluginName != "" || c.ComponentName != ""
}

// LayerBinding associates one UI position (and optionally one attribute or
// variant property) with one contract tag path.
type LayerBinding struct {
	ContractPath ContractPath `json:"contractPath"`
	SectionID    string       `json:"sectionId"`
	TagPath      []string     `json:"tagPath"`
	Attribute    string       `json:"attribute,omitempty"`
	Property     string       `json:"property,omitempty"`
}

// Path returns dotted tag path within its contract.
func (b LayerBinding) Path() string {
	return strings.Join(b.TagPath, ".")
}

// VariantExpression is a conditional rendering expression kept verbatim with
// identifier paths it references.
type VariantExpression struct {
	ID         string   `json:"id"`
	Expression string   `json:"expression"`
	References []string `json:"references,omitempty"`
}

var (
	ErrNoTagPath   = errors.New("binding has no tag path")
	ErrNoSectionID = errors.New("binding has no section id")
)

// Validate checks minimal structural requirements of a binding.
func (b LayerBinding) Validate() error {
	if len(b.TagPath) == 0 {
		return ErrNoTagPath
	}
	if b.SectionID == "" {
		return ErrNoSectionID
	}
	return nil
}

// Encode serializes bindings to JSON array stored in node metadata.
func Encode(bs []LayerBinding) (string, error) {
	if bs == nil {
		bs = []LayerBinding{}
	}
	data, err := json.Marshal(bs)
	if err != nil {
		return "", fmt.Errorf("unable to encode bindings: %w", err)
	}
	return string(data), nil
}

// Decode parses JSON array of bindings and validates every entry.
func Decode(s string) ([]LayerBinding, error) {
	var bs []LayerBinding
	if err := json.Unmarshal([]byte(s), &bs); err != nil {
		return nil, fmt.Errorf("bindings are not a JSON array: %w", err)
	}
	for i, b := range bs {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
	}
	return bs, nil
}
