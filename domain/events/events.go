package events

import (
	"time"
)

// Event types
const (
	TypeNodeAdded           = "node.added"
	TypeNodeRemoved         = "node.removed"
	TypeNodeMoved           = "node.moved"
	TypeNodePropertyChanged = "node.property.changed"
	TypeEdgeAdded           = "edge.added"
	TypeEdgeRemoved         = "edge.removed"
	TypePlaybackStarted     = "playback.started"
	TypePlaybackStopped     = "playback.stopped"
	TypeGraphCleared        = "graph.cleared"
)

// DomainEvent represents an important occurrence in the editor graph
type DomainEvent interface {
	GetEventType() string
	GetAggregateID() string
	GetTimestamp() time.Time
}

// BaseEvent provides common functionality for all domain events
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
}

// GetEventType returns the event type
func (e BaseEvent) GetEventType() string {
	return e.EventType
}

// GetAggregateID returns the aggregate ID
func (e BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

// GetTimestamp returns the event timestamp
func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func newBase(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   time.Now(),
	}
}

// NodeAdded is emitted when a node joins the canonical graph
type NodeAdded struct {
	BaseEvent
	NodeID   string `json:"nodeId"`
	NodeType string `json:"nodeType"`
}

// NewNodeAdded creates a node added event
func NewNodeAdded(nodeID, nodeType string) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(TypeNodeAdded, nodeID),
		NodeID:    nodeID,
		NodeType:  nodeType,
	}
}

// NodeRemoved is emitted when a node leaves the canonical graph
type NodeRemoved struct {
	BaseEvent
	NodeID   string `json:"nodeId"`
	NodeType string `json:"nodeType"`
}

// NewNodeRemoved creates a node removed event
func NewNodeRemoved(nodeID, nodeType string) NodeRemoved {
	return NodeRemoved{
		BaseEvent: newBase(TypeNodeRemoved, nodeID),
		NodeID:    nodeID,
		NodeType:  nodeType,
	}
}

// NodeMoved is emitted when a node's canvas position changes
type NodeMoved struct {
	BaseEvent
	NodeID string  `json:"nodeId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// NewNodeMoved creates a node moved event
func NewNodeMoved(nodeID string, x, y float64) NodeMoved {
	return NodeMoved{
		BaseEvent: newBase(TypeNodeMoved, nodeID),
		NodeID:    nodeID,
		X:         x,
		Y:         y,
	}
}

// NodePropertyChanged is emitted when a node property mutates
type NodePropertyChanged struct {
	BaseEvent
	NodeID   string `json:"nodeId"`
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// NewNodePropertyChanged creates a property changed event
func NewNodePropertyChanged(nodeID, property string, value any) NodePropertyChanged {
	return NodePropertyChanged{
		BaseEvent: newBase(TypeNodePropertyChanged, nodeID),
		NodeID:    nodeID,
		Property:  property,
		Value:     value,
	}
}

// EdgeAdded is emitted when an edge is created
type EdgeAdded struct {
	BaseEvent
	EdgeID   string `json:"edgeId"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// NewEdgeAdded creates an edge added event
func NewEdgeAdded(edgeID, sourceID, targetID string) EdgeAdded {
	return EdgeAdded{
		BaseEvent: newBase(TypeEdgeAdded, edgeID),
		EdgeID:    edgeID,
		SourceID:  sourceID,
		TargetID:  targetID,
	}
}

// EdgeRemoved is emitted when an edge is torn down
type EdgeRemoved struct {
	BaseEvent
	EdgeID string `json:"edgeId"`
}

// NewEdgeRemoved creates an edge removed event
func NewEdgeRemoved(edgeID string) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: newBase(TypeEdgeRemoved, edgeID),
		EdgeID:    edgeID,
	}
}

// PlaybackChanged is emitted on play and pause transitions
type PlaybackChanged struct {
	BaseEvent
	Playing bool `json:"playing"`
}

// NewPlaybackChanged creates a playback transition event
func NewPlaybackChanged(playing bool) PlaybackChanged {
	eventType := TypePlaybackStopped
	if playing {
		eventType = TypePlaybackStarted
	}
	return PlaybackChanged{
		BaseEvent: newBase(eventType, "playback"),
		Playing:   playing,
	}
}

// GraphCleared is emitted when the whole graph is wiped
type GraphCleared struct {
	BaseEvent
}

// NewGraphCleared creates a graph cleared event
func NewGraphCleared() GraphCleared {
	return GraphCleared{
		BaseEvent: newBase(TypeGraphCleared, "graph"),
	}
}
