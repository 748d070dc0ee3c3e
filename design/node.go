// Package design models the design tool document tree (vendor document) as
// it is exchanged in JSON files.
package design

import (
	"encoding/json"
	"fmt"
)

// Kind is the vendor node type.
type Kind int

const (
	KindSection Kind = iota
	KindFrame
	KindText
	KindRectangle
	KindEllipse
	KindVector
	KindGroup
	KindComponent
	KindComponentSet
	KindInstance
)

var kindNames = [...]string{
	KindSection:      "SECTION",
	KindFrame:        "FRAME",
	KindText:         "TEXT",
	KindRectangle:    "RECTANGLE",
	KindEllipse:      "ELLIPSE",
	KindVector:       "VECTOR",
	KindGroup:        "GROUP",
	KindComponent:    "COMPONENT",
	KindComponentSet: "COMPONENT_SET",
	KindInstance:     "INSTANCE",
}

// KindNames lists all known kind names in declaration order.
func KindNames() []string {
	return kindNames[:]
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps type name to Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// MarshalJSON writes kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown node type %d", int(k))
	}
	return json.Marshal(kindNames[k])
}

// UnmarshalJSON reads kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Layout values.
const (
	LayoutNone       = "NONE"
	LayoutHorizontal = "HORIZONTAL"
	LayoutVertical   = "VERTICAL"

	SizingFixed = "FIXED"
	SizingHug   = "HUG"

	PositioningAuto     = "AUTO"
	PositioningAbsolute = "ABSOLUTE"

	PaintSolid = "SOLID"
	PaintImage = "IMAGE"

	EffectDropShadow = "DROP_SHADOW"

	PropertyVariant = "VARIANT"
	PropertyBoolean = "BOOLEAN"

	AutoResizeNone        = "NONE"
	AutoResizeHeight      = "HEIGHT"
	AutoResizeWidthHeight = "WIDTH_AND_HEIGHT"
)

// RGBA color with channels in 0..1.
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint is a fill or stroke.
type Paint struct {
	Type      string  `json:"type"`
	Color     *RGBA   `json:"color,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	MimeType  string  `json:"mimeType,omitempty"`
	ScaleMode string  `json:"scaleMode,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
}

// Vector is a 2D offset.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Effect is a visual effect, only drop shadows are produced.
type Effect struct {
	Type   string  `json:"type"`
	Color  RGBA    `json:"color"`
	Offset Vector  `json:"offset"`
	Radius float64 `json:"radius"`
	Spread float64 `json:"spread,omitempty"`
}

// LineHeight is either pixels or a multiplier.
type LineHeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // PIXELS or MULTIPLIER
}

// TextStyle is typography of TEXT nodes.
type TextStyle struct {
	FontFamily     string      `json:"fontFamily,omitempty"`
	FontSize       float64     `json:"fontSize,omitempty"`
	FontWeight     int         `json:"fontWeight,omitempty"`
	TextAlign      string      `json:"textAlignHorizontal,omitempty"`
	LetterSpacing  *float64    `json:"letterSpacing,omitempty"`
	LineHeight     *LineHeight `json:"lineHeight,omitempty"`
	TextDecoration string      `json:"textDecoration,omitempty"`
	TextCase       string      `json:"textCase,omitempty"`
	Truncation     string      `json:"textTruncation,omitempty"`
	MaxLines       int         `json:"maxLines,omitempty"`
	AutoResize     string      `json:"textAutoResize,omitempty"`
	Hyperlink      string      `json:"hyperlink,omitempty"`
	MissingFont    bool        `json:"hasMissingFont,omitempty"`
	PreserveSpace  bool        `json:"preserveWhitespace,omitempty"`
}

// VectorPath is one SVG path of a VECTOR node.
type VectorPath struct {
	WindingRule string `json:"windingRule,omitempty"`
	Data        string `json:"data"`
}

// ComponentProperty is a property definition of a COMPONENT_SET.
type ComponentProperty struct {
	Type           string   `json:"type"`
	DefaultValue   string   `json:"defaultValue"`
	VariantOptions []string `json:"variantOptions,omitempty"`
}

// Node is a vendor document node.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"type"`

	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`

	SizingHorizontal string   `json:"layoutSizingHorizontal,omitempty"`
	SizingVertical   string   `json:"layoutSizingVertical,omitempty"`
	Positioning      string   `json:"layoutPositioning,omitempty"`
	MinWidth         *float64 `json:"minWidth,omitempty"`
	MaxWidth         *float64 `json:"maxWidth,omitempty"`
	MinHeight        *float64 `json:"minHeight,omitempty"`
	MaxHeight        *float64 `json:"maxHeight,omitempty"`

	LayoutMode       string  `json:"layoutMode,omitempty"`
	ItemSpacing      float64 `json:"itemSpacing,omitempty"`
	PaddingTop       float64 `json:"paddingTop,omitempty"`
	PaddingRight     float64 `json:"paddingRight,omitempty"`
	PaddingBottom    float64 `json:"paddingBottom,omitempty"`
	PaddingLeft      float64 `json:"paddingLeft,omitempty"`
	PrimaryAxisAlign string  `json:"primaryAxisAlignItems,omitempty"`
	CounterAxisAlign string  `json:"counterAxisAlignItems,omitempty"`

	Fills        []Paint   `json:"fills,omitempty"`
	Strokes      []Paint   `json:"strokes,omitempty"`
	StrokeWeight float64   `json:"strokeWeight,omitempty"`
	DashPattern  []float64 `json:"dashPattern,omitempty"`
	CornerRadius float64   `json:"cornerRadius,omitempty"`
	Opacity      *float64  `json:"opacity,omitempty"`
	Effects      []Effect  `json:"effects,omitempty"`
	ClipsContent bool      `json:"clipsContent,omitempty"`

	Characters string       `json:"characters,omitempty"`
	Text       *TextStyle   `json:"style,omitempty"`
	Paths      []VectorPath `json:"vectorPaths,omitempty"`

	PropertyDefinitions map[string]ComponentProperty `json:"componentPropertyDefinitions,omitempty"`
	VariantProperties   map[string]string            `json:"variantProperties,omitempty"`
	MainComponentID     string                       `json:"mainComponentId,omitempty"`

	PluginData map[string]string `json:"pluginData,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
}

// Meta returns metadata value.
func (n *Node) Meta(key string) string {
	if n == nil || n.PluginData == nil {
		return ""
	}
	return n.PluginData[key]
}

// SetMeta stores metadata value, empty value removes the key.
func (n *Node) SetMeta(key, value string) {
	if value == "" {
		delete(n.PluginData, key)
		return
	}
	if n.PluginData == nil {
		n.PluginData = make(map[string]string)
	}
	n.PluginData[key] = value
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

// IsContainer reports whether node kind holds children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindSection, KindFrame, KindGroup, KindComponent, KindComponentSet, KindInstance:
		return true
	}
	return false
}
