package valueobjects

import (
	"strings"

	pkgerrors "patchbay/pkg/errors"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node for its whole lifetime
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(s string) (NodeID, error) {
	if s == "" {
		return NodeID{}, pkgerrors.NewValidation("node ID cannot be empty")
	}
	if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
		return NodeID{}, pkgerrors.NewValidation("node ID must be a valid UUID")
	}
	return NodeID{value: strings.TrimSpace(s)}, nil
}

// String returns the string representation
func (id NodeID) String() string {
	return id.value
}

// IsZero checks whether the ID is unset
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// Equals checks two node IDs for equality
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// EdgeID uniquely identifies a visual edge
type EdgeID struct {
	value string
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// NewEdgeIDFromString creates an EdgeID from an existing string
func NewEdgeIDFromString(s string) (EdgeID, error) {
	if s == "" {
		return EdgeID{}, pkgerrors.NewValidation("edge ID cannot be empty")
	}
	if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
		return EdgeID{}, pkgerrors.NewValidation("edge ID must be a valid UUID")
	}
	return EdgeID{value: strings.TrimSpace(s)}, nil
}

// String returns the string representation
func (id EdgeID) String() string {
	return id.value
}

// IsZero checks whether the ID is unset
func (id EdgeID) IsZero() bool {
	return id.value == ""
}

// Equals checks two edge IDs for equality
func (id EdgeID) Equals(other EdgeID) bool {
	return id.value == other.value
}
