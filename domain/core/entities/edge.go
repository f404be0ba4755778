package entities

import (
	"fmt"

	"patchbay/domain/core/valueobjects"
)

// GraphEdge is a visual connection between two node ports
// Handle names are validated against node metadata before creation,
// never after
type GraphEdge struct {
	ID           valueobjects.EdgeID
	SourceID     valueobjects.NodeID
	TargetID     valueobjects.NodeID
	SourceHandle string
	TargetHandle string
}

// NewGraphEdge creates an edge with a fresh id
func NewGraphEdge(sourceID, targetID valueobjects.NodeID, sourceHandle, targetHandle string) *GraphEdge {
	return &GraphEdge{
		ID:           valueobjects.NewEdgeID(),
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
}

// Touches reports whether the edge references the given node on either side
func (e *GraphEdge) Touches(id valueobjects.NodeID) bool {
	return e.SourceID.Equals(id) || e.TargetID.Equals(id)
}

// Connection returns the semantic counterpart of the edge
func (e *GraphEdge) Connection() AudioConnection {
	return AudioConnection{
		SourceID:     e.SourceID,
		TargetID:     e.TargetID,
		SourceOutput: e.SourceHandle,
		TargetInput:  e.TargetHandle,
	}
}

// AudioConnection is the semantic (non-visual) counterpart of an edge
// once realized in the backing engine
type AudioConnection struct {
	SourceID     valueobjects.NodeID
	TargetID     valueobjects.NodeID
	SourceOutput string
	TargetInput  string
}

// Key returns the dedup key for the 4-tuple
// Multiple edges may describe the same connection; loading dedups on this key
func (c AudioConnection) Key() string {
	return fmt.Sprintf("%s/%s->%s/%s", c.SourceID, c.SourceOutput, c.TargetID, c.TargetInput)
}

// Touches reports whether the connection references the given node on either side
func (c AudioConnection) Touches(id valueobjects.NodeID) bool {
	return c.SourceID.Equals(id) || c.TargetID.Equals(id)
}
