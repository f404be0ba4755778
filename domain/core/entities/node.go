package entities

import (
	"fmt"

	"patchbay/domain/catalog"
	"patchbay/domain/core/valueobjects"
	pkgerrors "patchbay/pkg/errors"
)

// NodeState represents the adapter lifecycle state of a node
// No state is reachable from StateRemoved
type NodeState string

const (
	StateCreated      NodeState = "created"
	StateInitializing NodeState = "initializing"
	StateAttached     NodeState = "attached"
	StateDetaching    NodeState = "detaching"
	StateRemoved      NodeState = "removed"
)

// GraphNode is a node instance in the canonical graph
// This is a rich domain model with encapsulated business logic
type GraphNode struct {
	// Private fields ensure encapsulation
	id         valueobjects.NodeID
	nodeType   string
	position   valueobjects.Position
	metadata   catalog.NodeType
	properties map[string]any
	state      NodeState
}

// NewGraphNode creates a node of the given type with metadata-derived defaults
func NewGraphNode(meta catalog.NodeType, position valueobjects.Position) *GraphNode {
	return &GraphNode{
		id:         valueobjects.NewNodeID(),
		nodeType:   meta.Name,
		position:   position,
		metadata:   meta,
		properties: meta.DefaultProperties(),
		state:      StateCreated,
	}
}

// ReconstructGraphNode rebuilds a node from snapshot data with a preserved id
// Used when applying undo patches and when loading saved graphs
func ReconstructGraphNode(
	id valueobjects.NodeID,
	meta catalog.NodeType,
	position valueobjects.Position,
	properties map[string]any,
) (*GraphNode, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidation("node ID is required for reconstruction")
	}

	props := meta.DefaultProperties()
	for k, v := range properties {
		props[k] = v
	}

	return &GraphNode{
		id:         id,
		nodeType:   meta.Name,
		position:   position,
		metadata:   meta,
		properties: props,
		state:      StateCreated,
	}, nil
}

// ID returns the node's unique identifier
func (n *GraphNode) ID() valueobjects.NodeID {
	return n.id
}

// NodeType returns the type tag identifying the node's behavior
func (n *GraphNode) NodeType() string {
	return n.nodeType
}

// Position returns the node's canvas position
func (n *GraphNode) Position() valueobjects.Position {
	return n.position
}

// SetPosition moves the node on the canvas
func (n *GraphNode) SetPosition(p valueobjects.Position) {
	n.position = p
}

// Metadata returns the immutable type descriptor
func (n *GraphNode) Metadata() catalog.NodeType {
	return n.metadata
}

// State returns the current lifecycle state
func (n *GraphNode) State() NodeState {
	return n.state
}

// Property returns a property value, falling back to the metadata default
// when the key was never set
func (n *GraphNode) Property(name string) (any, bool) {
	if v, ok := n.properties[name]; ok {
		return v, true
	}
	if p, ok := n.metadata.Property(name); ok {
		return p.Default, true
	}
	return nil, false
}

// SetProperty stores a property value
// Unknown names are stored but have no engine effect
func (n *GraphNode) SetProperty(name string, value any) {
	n.properties[name] = value
}

// Properties returns a copy of the property map to maintain encapsulation
func (n *GraphNode) Properties() map[string]any {
	props := make(map[string]any, len(n.properties))
	for k, v := range n.properties {
		props[k] = v
	}
	return props
}

// Lifecycle transitions
// created -> initializing -> attached -> detaching -> removed
// The initializing -> attached transition is the only point at which
// the backing engine object may be created

// BeginInitialize moves the node into the initializing state
func (n *GraphNode) BeginInitialize() error {
	if n.state != StateCreated && n.state != StateInitializing {
		return n.transitionError(StateInitializing)
	}
	n.state = StateInitializing
	return nil
}

// MarkAttached records that the backing object exists
func (n *GraphNode) MarkAttached() error {
	if n.state != StateInitializing {
		return n.transitionError(StateAttached)
	}
	n.state = StateAttached
	return nil
}

// BeginDetach starts teardown
func (n *GraphNode) BeginDetach() error {
	if n.state == StateRemoved {
		return n.transitionError(StateDetaching)
	}
	n.state = StateDetaching
	return nil
}

// MarkRemoved finalizes teardown; terminal
func (n *GraphNode) MarkRemoved() {
	n.state = StateRemoved
}

// IsAttached reports whether the node may receive property updates and connections
func (n *GraphNode) IsAttached() bool {
	return n.state == StateAttached
}

func (n *GraphNode) transitionError(to NodeState) error {
	return pkgerrors.NewConflict(
		fmt.Sprintf("invalid node state transition %s -> %s for node %s", n.state, to, n.id),
	)
}
