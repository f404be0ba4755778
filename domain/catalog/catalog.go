package catalog

import (
	"sort"

	pkgerrors "patchbay/pkg/errors"
)

// PortType classifies the signal a port carries
// Control ports carry scalar values that set parameters outright,
// audio ports carry audio-rate signals that modulate around a base value
type PortType string

const (
	PortAudio   PortType = "audio"
	PortControl PortType = "control"
)

// Port describes a named input or output on a node type
type Port struct {
	Name string   `json:"name" yaml:"name"`
	Type PortType `json:"type" yaml:"type"`
	// Param marks a native input that addresses an engine parameter
	// rather than a plain audio input
	Param bool `json:"param,omitempty" yaml:"param,omitempty"`
}

// Property describes a configurable property with its default and bounds
type Property struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Default any      `json:"default" yaml:"default"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// NodeType is the immutable descriptor for a node type
type NodeType struct {
	Name       string     `json:"name" yaml:"name"`
	Category   string     `json:"category" yaml:"category"`
	Native     bool       `json:"native" yaml:"native"`
	Inputs     []Port     `json:"inputs,omitempty" yaml:"inputs"`
	Outputs    []Port     `json:"outputs,omitempty" yaml:"outputs"`
	Properties []Property `json:"properties,omitempty" yaml:"properties"`
}

// Input looks up a declared input port by name
func (t NodeType) Input(name string) (Port, bool) {
	for _, p := range t.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Output looks up a declared output port by name
func (t NodeType) Output(name string) (Port, bool) {
	for _, p := range t.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Property looks up a property descriptor by name
func (t NodeType) Property(name string) (Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// DefaultProperties builds the property map a fresh node starts with
func (t NodeType) DefaultProperties() map[string]any {
	props := make(map[string]any, len(t.Properties))
	for _, p := range t.Properties {
		props[p.Name] = p.Default
	}
	return props
}

// IsSource reports whether the type is a native engine source node
// Stopped engine sources cannot be restarted, so the store recreates
// them on every playback start
func (t NodeType) IsSource() bool {
	return t.Native && t.Category == CategorySource
}

// Node type categories
const (
	CategorySource  = "source"
	CategoryEffect  = "effect"
	CategoryOutput  = "output"
	CategoryControl = "control"
	CategoryLogic   = "logic"
	CategoryUtility = "utility"
)

// Catalog is the static node-type metadata mapping, loaded once at
// startup and treated as immutable afterwards
type Catalog struct {
	types map[string]NodeType
}

// New builds a catalog from a list of descriptors
func New(types []NodeType) (*Catalog, error) {
	m := make(map[string]NodeType, len(types))
	for _, t := range types {
		if t.Name == "" {
			return nil, pkgerrors.NewValidation("node type name cannot be empty")
		}
		if _, exists := m[t.Name]; exists {
			return nil, pkgerrors.NewValidation("duplicate node type: " + t.Name)
		}
		m[t.Name] = t
	}
	return &Catalog{types: m}, nil
}

// Lookup returns the descriptor for a node type
func (c *Catalog) Lookup(name string) (NodeType, bool) {
	t, ok := c.types[name]
	return t, ok
}

// IsNative reports whether the type is backed by a native engine object
// Everything not native falls through to the custom runtime
func (c *Catalog) IsNative(name string) bool {
	t, ok := c.types[name]
	return ok && t.Native
}

// Types returns every descriptor, sorted by name for stable iteration
func (c *Catalog) Types() []NodeType {
	out := make([]NodeType, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func floatPtr(v float64) *float64 {
	return &v
}
