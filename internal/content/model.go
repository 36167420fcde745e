package content

import (
	"strconv"
	"strings"
)

// Well-known model types.
const (
	TypePresentation   = "presentation"
	TypeSlide          = "slide"
	TypeSlideGrid      = "slide-grid"
	TypeSlideHotspots  = "slide-hotspots"
	TypeCustomTemplate = "custom_layout_template"
	TypeMedia          = "media"
	TypePinboard       = "pinboard"
)

// Well-known property and resource keys.
const (
	KeyMedia           = "media"
	KeyBackgroundMedia = "background_media"
	KeyPinboardItems   = "pinboard_items"
	KeyLayoutOption    = "layout_option_save_value"
)

// Model is a node in the content tree. The orchestrator treats it as an
// opaque reference and only reads the fields below.
type Model struct {
	ID         int                 `yaml:"id" toml:"id" json:"id"`
	UID        string              `yaml:"uid,omitempty" toml:"uid,omitempty" json:"uid,omitempty"`
	Name       string              `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Type       string              `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	ParentID   int                 `yaml:"parent_id,omitempty" toml:"parent_id,omitempty" json:"parent_id,omitempty"`
	Properties map[string]string   `yaml:"properties,omitempty" toml:"properties,omitempty" json:"properties,omitempty"`
	Resources  map[string]Resource `yaml:"resources,omitempty" toml:"resources,omitempty" json:"resources,omitempty"`
	Children   []*Model            `yaml:"children,omitempty" toml:"children,omitempty" json:"children,omitempty"`
	// References holds named lists of other nodes, by id.
	References map[string][]int `yaml:"references,omitempty" toml:"references,omitempty" json:"references,omitempty"`
}

// Empty reports whether m is a nil or zero-valued reference.
func (m *Model) Empty() bool {
	return m == nil || (m.ID == 0 && m.UID == "" && m.Name == "" && len(m.Resources) == 0 && len(m.Properties) == 0)
}

// Prop returns a string property or "".
func (m *Model) Prop(key string) string {
	if m == nil || m.Properties == nil {
		return ""
	}
	return m.Properties[key]
}

// Float returns a float property, or 0 when missing or malformed.
func (m *Model) Float(key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(m.Prop(key)), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int returns an integer property, or 0 when missing or malformed.
func (m *Model) Int(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(m.Prop(key)))
	if err != nil {
		return int(m.Float(key))
	}
	return v
}

// Bool returns a boolean property. "on" and "yes" count as true.
func (m *Model) Bool(key string) bool {
	return ParseBool(m.Prop(key))
}

// Resource returns the resource stored under key, or the zero Resource.
func (m *Model) Resource(key string) Resource {
	if m == nil || m.Resources == nil {
		return Resource{}
	}
	return m.Resources[key]
}

// Media is shorthand for Resource(KeyMedia).
func (m *Model) Media() Resource {
	return m.Resource(KeyMedia)
}

// SetProp sets a string property, allocating the map when needed.
func (m *Model) SetProp(key, value string) {
	if m.Properties == nil {
		m.Properties = make(map[string]string)
	}
	m.Properties[key] = value
}

// SetResource stores r under key.
func (m *Model) SetResource(key string, r Resource) {
	if m.Resources == nil {
		m.Resources = make(map[string]Resource)
	}
	m.Resources[key] = r
}

// NewErrorModel describes a resource that could not be loaded, for display in
// an error panel.
func NewErrorModel(failed *Model, message string) *Model {
	res := failed.Media()
	m := &Model{Name: "Sorry!"}
	m.SetProp("error", message)
	m.SetProp("media_path", res.Path)
	if failed != nil {
		m.SetProp("media_name", failed.Name)
	}
	m.SetResource(KeyMedia, res)
	return m
}

// ParseBool accepts the loose boolean forms used in content properties and
// launch strings.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "t", "y":
		return true
	}
	return false
}
