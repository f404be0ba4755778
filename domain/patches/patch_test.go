package patches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_Invert(t *testing.T) {
	node := &NodeSnapshot{ID: "n1", NodeType: "GainNode", X: 1, Y: 2}
	edge := &EdgeSnapshot{ID: "e1", SourceID: "n1", TargetID: "n2"}

	tests := []struct {
		name string
		in   Patch
		want Patch
	}{
		{
			name: "add node inverts to remove",
			in:   Patch{Kind: KindAddNode, Node: node},
			want: Patch{Kind: KindRemoveNode, Node: node},
		},
		{
			name: "remove node inverts to add",
			in:   Patch{Kind: KindRemoveNode, Node: node},
			want: Patch{Kind: KindAddNode, Node: node},
		},
		{
			name: "add edge inverts to remove",
			in:   Patch{Kind: KindAddEdge, Edge: edge},
			want: Patch{Kind: KindRemoveEdge, Edge: edge},
		},
		{
			name: "set property swaps before and after",
			in:   Patch{Kind: KindSetProperty, NodeID: "n1", Name: "gain", Before: 1.0, After: 0.0},
			want: Patch{Kind: KindSetProperty, NodeID: "n1", Name: "gain", Before: 0.0, After: 1.0},
		},
		{
			name: "move swaps endpoints",
			in:   Patch{Kind: KindMoveNode, NodeID: "n1", FromX: 1, FromY: 2, ToX: 3, ToY: 4},
			want: Patch{Kind: KindMoveNode, NodeID: "n1", FromX: 3, FromY: 4, ToX: 1, ToY: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Invert())
		})
	}
}

func TestPatch_Invert_IsInvolution(t *testing.T) {
	p := Patch{Kind: KindSetProperty, NodeID: "n1", Name: "gain", Before: 1.0, After: 0.5}

	assert.Equal(t, p, p.Invert().Invert())
}

func TestTransaction_Inverse_ReversesOrder(t *testing.T) {
	// Undo must unwind in reverse: the edge goes away before the
	// property it depended on is restored
	tx := Transaction{
		Label: "add edge",
		Forward: []Patch{
			{Kind: KindSetProperty, NodeID: "n2", Name: "frequency", Before: 440.0, After: 0.0},
			{Kind: KindAddEdge, Edge: &EdgeSnapshot{ID: "e1"}},
		},
	}

	inverse := tx.Inverse()

	require.Len(t, inverse, 2)
	assert.Equal(t, KindRemoveEdge, inverse[0].Kind)
	assert.Equal(t, KindSetProperty, inverse[1].Kind)
	assert.Equal(t, 440.0, inverse[1].After)
}

func TestNodeSnapshot_Clone_IsDeep(t *testing.T) {
	original := NodeSnapshot{
		ID:         "n1",
		Properties: map[string]any{"gain": 1.0},
	}

	clone := original.Clone()
	clone.Properties["gain"] = 2.0

	assert.Equal(t, 1.0, original.Properties["gain"])
}
