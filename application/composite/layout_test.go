package composite

import (
	"testing"

	"patchbay/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoLayout_ColumnsFollowSignalFlow(t *testing.T) {
	// ext_input_in -> a -> b -> ext_output_out
	inputs := []entities.CompositePort{{ID: "in"}}
	outputs := []entities.CompositePort{{ID: "out"}}
	g := entities.InternalGraph{
		Nodes: []entities.InternalNode{
			{ID: "a", NodeType: "GainNode"},
			{ID: "b", NodeType: "BiquadFilterNode"},
		},
		Edges: []entities.InternalEdge{
			{Source: "ext_input_in", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "ext_output_out"},
		},
	}

	points := AutoLayout(g, inputs, outputs)

	require.Len(t, points, 4)
	assert.Less(t, points["ext_input_in"].X, points["a"].X)
	assert.Less(t, points["a"].X, points["b"].X)
	assert.Less(t, points["b"].X, points["ext_output_out"].X)
}

func TestAutoLayout_NodeSitsRightOfFurthestPredecessor(t *testing.T) {
	// Both a and b feed c; c must sit right of the deeper of the two
	inputs := []entities.CompositePort{{ID: "in"}}
	g := entities.InternalGraph{
		Nodes: []entities.InternalNode{
			{ID: "a"}, {ID: "b"}, {ID: "c"},
		},
		Edges: []entities.InternalEdge{
			{Source: "ext_input_in", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
			{Source: "b", Target: "c"},
		},
	}

	points := AutoLayout(g, inputs, nil)

	assert.Greater(t, points["c"].X, points["b"].X)
}

func TestAutoLayout_CycleTerminates(t *testing.T) {
	g := entities.InternalGraph{
		Nodes: []entities.InternalNode{{ID: "a"}, {ID: "b"}},
		Edges: []entities.InternalEdge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}

	points := AutoLayout(g, nil, nil)

	assert.Len(t, points, 2)
}

func TestAutoLayout_ColumnIsVerticallyCentered(t *testing.T) {
	inputs := []entities.CompositePort{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}

	points := AutoLayout(entities.InternalGraph{}, inputs, nil)

	// Three ids in the column: one above center, one on it, one below
	assert.Equal(t, layoutCenterY-layoutRowHeight, points["ext_input_p1"].Y)
	assert.Equal(t, layoutCenterY, points["ext_input_p2"].Y)
	assert.Equal(t, layoutCenterY+layoutRowHeight, points["ext_input_p3"].Y)
}
