package entities

import (
	"patchbay/domain/catalog"
	pkgerrors "patchbay/pkg/errors"
)

// CompositePort declares an external input or output port on a
// composite node definition
type CompositePort struct {
	ID   string           `json:"id" yaml:"id"`
	Name string           `json:"name" yaml:"name"`
	Type catalog.PortType `json:"type" yaml:"type"`
}

// InternalNode is the portable representation of a node inside a
// composite definition's internal graph
type InternalNode struct {
	ID         string         `json:"id"`
	NodeType   string         `json:"nodeType"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Properties map[string]any `json:"properties,omitempty"`
}

// InternalEdge is the portable representation of an edge inside a
// composite definition's internal graph. Endpoints may name sentinel
// node ids that stand for external ports.
type InternalEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// InternalConnection carries connection semantics without visual
// concerns, emitted redundantly alongside edges
type InternalConnection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceOutput string `json:"sourceOutput"`
	TargetInput  string `json:"targetInput"`
}

// InternalGraph is the serialized body of a composite definition
type InternalGraph struct {
	Nodes       []InternalNode       `json:"nodes"`
	Edges       []InternalEdge       `json:"edges"`
	Connections []InternalConnection `json:"connections"`
}

// CompositeNodeDefinition is a named, reusable subgraph
type CompositeNodeDefinition struct {
	ID          int
	Name        string
	Description string
	Inputs      []CompositePort
	Outputs     []CompositePort
	Internal    InternalGraph
	IsPrebuilt  bool
}

// EnsureEditable guards the prebuilt invariant: prebuilt definitions
// are immutable and may only be copied, never edited or deleted
func (d *CompositeNodeDefinition) EnsureEditable() error {
	if d.IsPrebuilt {
		return pkgerrors.NewValidation("prebuilt definitions cannot be modified, use save-as to create a copy")
	}
	return nil
}

// CopyAs creates an editable copy under a new name
// The copy has no id yet; the repository allocates one on save
func (d *CompositeNodeDefinition) CopyAs(name string) *CompositeNodeDefinition {
	copied := &CompositeNodeDefinition{
		Name:        name,
		Description: d.Description,
		Inputs:      append([]CompositePort(nil), d.Inputs...),
		Outputs:     append([]CompositePort(nil), d.Outputs...),
		Internal:    d.Internal.Clone(),
		IsPrebuilt:  false,
	}
	return copied
}

// Clone deep-copies the internal graph
func (g InternalGraph) Clone() InternalGraph {
	out := InternalGraph{
		Nodes:       make([]InternalNode, len(g.Nodes)),
		Edges:       append([]InternalEdge(nil), g.Edges...),
		Connections: append([]InternalConnection(nil), g.Connections...),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n
		if n.Properties != nil {
			props := make(map[string]any, len(n.Properties))
			for k, v := range n.Properties {
				props[k] = v
			}
			out.Nodes[i].Properties = props
		}
	}
	return out
}
