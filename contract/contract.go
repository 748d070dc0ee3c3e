// Package contract models contracts: trees of typed, named bindable points a
// page or a headless component exposes. Contracts are read-only once loaded.
package contract

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Type is a set of tag roles.
type Type uint8

const (
	TypeData Type = 1 << iota
	TypeInteractive
	TypeSubContract
	TypeVariant
)

var typeNames = []struct {
	t    Type
	name string
}{
	{TypeData, "data"},
	{TypeInteractive, "interactive"},
	{TypeSubContract, "sub-contract"},
	{TypeVariant, "variant"},
}

// Has reports whether all roles of o are present.
func (t Type) Has(o Type) bool {
	return t&o == o && o != 0
}

func (t Type) String() string {
	var parts []string
	for _, n := range typeNames {
		if t&n.t != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ")
}

// ParseType parses a single role name. Both "sub-contract" and "subContract"
// spellings are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "data":
		return TypeData, nil
	case "interactive":
		return TypeInteractive, nil
	case "sub-contract", "subcontract":
		return TypeSubContract, nil
	case "variant":
		return TypeVariant, nil
	}
	return 0, fmt.Errorf("unknown tag type %q", s)
}

// UnmarshalYAML accepts either a sequence of role names or a single comma
// separated string.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	switch node.Kind {
	case yaml.ScalarNode:
		names = strings.Split(node.Value, ",")
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: tag type must be a string or a list", node.Line)
	}
	var res Type
	for _, n := range names {
		v, err := ParseType(n)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		res |= v
	}
	*t = res
	return nil
}

// Kind is the declared data type of a tag.
type Kind string

const (
	KindNone    Kind = ""
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindEnum    Kind = "enum"
)

// DataType is a declared data type, enumerations carry their values.
type DataType struct {
	Kind   Kind
	Values []string
}

// ParseDataType parses "string", "boolean", "enum (A | B)" and similar.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DataType{}, nil
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "enum") {
		rest := strings.TrimSpace(s[len("enum"):])
		if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
			return DataType{}, fmt.Errorf("malformed enum data type %q", s)
		}
		var values []string
		for v := range strings.SplitSeq(rest[1:len(rest)-1], "|") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return DataType{}, fmt.Errorf("enum data type %q has no values", s)
		}
		return DataType{Kind: KindEnum, Values: values}, nil
	}
	switch Kind(lower) {
	case KindString, KindNumber, KindBoolean, KindDate:
		return DataType{Kind: Kind(lower)}, nil
	}
	return DataType{}, fmt.Errorf("unknown data type %q", s)
}

func (d DataType) String() string {
	if d.Kind == KindEnum {
		return "enum (" + strings.Join(d.Values, " | ") + ")"
	}
	return string(d.Kind)
}

// UnmarshalYAML parses textual data type form.
func (d *DataType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: data type must be a string", node.Line)
	}
	v, err := ParseDataType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = v
	return nil
}

// Tag is a node of the contract tree.
type Tag struct {
	Name        string   `yaml:"tag"`
	Type        Type     `yaml:"type"`
	DataType    DataType `yaml:"dataType"`
	Repeated    bool     `yaml:"repeated"`
	TrackBy     string   `yaml:"trackBy"`
	ElementType string   `yaml:"elementType"`
	Description string   `yaml:"description"`
	Tags        []*Tag   `yaml:"tags"`
}

// IsData reports whether the tag carries data.
func (t *Tag) IsData() bool {
	return t.Type.Has(TypeData) || t.Type.Has(TypeVariant)
}

// IsInteractive reports whether the tag is an interactive element reference.
func (t *Tag) IsInteractive() bool {
	return t.Type.Has(TypeInteractive)
}

// IsBoolean reports whether the tag is declared boolean.
func (t *Tag) IsBoolean() bool {
	return t.DataType.Kind == KindBoolean
}

// Values returns declared value set for variant selection: enumeration
// values or "false", "true" for booleans.
func (t *Tag) Values() []string {
	switch t.DataType.Kind {
	case KindEnum:
		return t.DataType.Values
	case KindBoolean:
		return []string{"false", "true"}
	}
	return nil
}

// Child returns direct sub tag by name.
func (t *Tag) Child(name string) *Tag {
	return find(t.Tags, name)
}

// Contract is a named tree of tags.
type Contract struct {
	Name string `yaml:"name"`
	Tags []*Tag `yaml:"tags"`
}

// Lookup walks dot separated path from the contract root, it returns the
// chain of visited tags, last element being the target.
func (c *Contract) Lookup(path string) ([]*Tag, bool) {
	if c == nil || path == "" {
		return nil, false
	}
	var (
		chain []*Tag
		tags  = c.Tags
	)
	for seg := range strings.SplitSeq(path, ".") {
		t := find(tags, seg)
		if t == nil {
			return nil, false
		}
		chain = append(chain, t)
		tags = t.Tags
	}
	return chain, true
}

// Tag returns tag at dot separated path.
func (c *Contract) Tag(path string) *Tag {
	chain, ok := c.Lookup(path)
	if !ok {
		return nil
	}
	return chain[len(chain)-1]
}

// Walk visits every tag depth first with its full dotted path.
func (c *Contract) Walk(fn func(path string, t *Tag)) {
	var walk func(prefix string, tags []*Tag)
	walk = func(prefix string, tags []*Tag) {
		for _, t := range tags {
			p := t.Name
			if prefix != "" {
				p = prefix + "." + t.Name
			}
			fn(p, t)
			walk(p, t.Tags)
		}
	}
	walk("", c.Tags)
}

func find(tags []*Tag, name string) *Tag {
	for _, t := range tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}
