package services

import (
	"testing"

	"patchbay/application/clipboard"
	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"
	"patchbay/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphStore_CopySelection_DropsBoundaryEdges(t *testing.T) {
	// Arrange: slider -> osc -> dest, with only slider and osc selected
	store, _ := newTestStore(t)
	slider, _ := store.AddNode(catalog.TypeSlider, 0, 0)
	osc, _ := store.AddNode(catalog.TypeOscillator, 100, 0)
	dest, _ := store.AddNode(catalog.TypeDestination, 200, 0)
	_, err := store.AddEdge(slider, osc, "value", "frequency")
	require.NoError(t, err)
	_, err = store.AddEdge(osc, dest, "output", "input")
	require.NoError(t, err)

	// Act
	payload, ok := store.CopySelection([]string{slider.String(), osc.String()})

	// Assert: the edge crossing the selection boundary is not copied
	require.True(t, ok)
	assert.Len(t, payload.Nodes, 2)
	require.Len(t, payload.Edges, 1)
	assert.Equal(t, slider.String(), payload.Edges[0].SourceID)
	assert.Equal(t, osc.String(), payload.Edges[0].TargetID)
}

func TestGraphStore_CopySelection_EmptySelection(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddNode(catalog.TypeSlider, 0, 0)

	_, ok := store.CopySelection(nil)
	assert.False(t, ok)

	_, ok = store.CopySelection([]string{"no-such-node"})
	assert.False(t, ok)
}

func TestGraphStore_PasteNodes_FreshIDsAndOffset(t *testing.T) {
	store, _ := newTestStore(t)
	slider, _ := store.AddNode(catalog.TypeSlider, 10, 20)
	osc, _ := store.AddNode(catalog.TypeOscillator, 110, 20)
	_, err := store.AddEdge(slider, osc, "value", "frequency")
	require.NoError(t, err)
	payload, ok := store.CopySelection([]string{slider.String(), osc.String()})
	require.True(t, ok)

	newIDs := store.PasteNodes(payload)

	require.Len(t, newIDs, 2)
	assert.NotContains(t, newIDs, slider.String())
	assert.NotContains(t, newIDs, osc.String())
	assert.Equal(t, 4, store.NodeCount())
	// The remapped edge realizes a second connection between the copies
	assert.Equal(t, 2, store.EdgeCount())
	assert.Len(t, store.Connections(), 2)

	// Pasted nodes land at the configured offset from the originals
	byType := make(map[string]*entities.GraphNode)
	for _, idStr := range newIDs {
		nodeID, err := valueobjects.NewNodeIDFromString(idStr)
		require.NoError(t, err)
		node, ok := store.Node(nodeID)
		require.True(t, ok)
		byType[node.NodeType()] = node
	}
	for _, pn := range payload.Nodes {
		node, ok := byType[pn.Data.NodeType]
		require.True(t, ok)
		assert.Equal(t, pn.X+40, node.Position().X())
		assert.Equal(t, pn.Y+40, node.Position().Y())
	}
}

func TestGraphStore_PasteNodes_IsOneUndoStep(t *testing.T) {
	store, _ := newTestStore(t)
	slider, _ := store.AddNode(catalog.TypeSlider, 0, 0)
	payload, ok := store.CopySelection([]string{slider.String()})
	require.True(t, ok)

	store.PasteNodes(payload)
	require.Equal(t, 2, store.NodeCount())

	require.True(t, store.Undo())
	assert.Equal(t, 1, store.NodeCount())
}

func TestGraphStore_PasteNodes_RepeatedPasteKeepsProducing(t *testing.T) {
	store, _ := newTestStore(t)
	slider, _ := store.AddNode(catalog.TypeSlider, 0, 0)
	payload, _ := store.CopySelection([]string{slider.String()})

	first := store.PasteNodes(payload)
	second := store.PasteNodes(payload)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])
	assert.Equal(t, 3, store.NodeCount())
}

func TestGraphStore_PasteNodes_SkipsUnknownTypesAndTheirEdges(t *testing.T) {
	store, _ := newTestStore(t)

	payload := clipboard.Payload{
		Type:    clipboard.PayloadType,
		Version: clipboard.PayloadVersion,
		Nodes: []clipboard.PayloadNode{
			{ID: "a", X: 0, Y: 0, Data: clipboard.PayloadNodeData{NodeType: catalog.TypeSlider}},
			{ID: "b", X: 100, Y: 0, Data: clipboard.PayloadNodeData{NodeType: "NoSuchNode"}},
		},
		Edges: []clipboard.PayloadEdge{
			{ID: "e", SourceID: "a", TargetID: "b", SourceHandle: "value", TargetHandle: "input"},
		},
	}

	newIDs := store.PasteNodes(payload)

	assert.Len(t, newIDs, 1)
	assert.Equal(t, 1, store.NodeCount())
	assert.Equal(t, 0, store.EdgeCount())
}

func TestGraphStore_DeleteNodes_OneUndoStep(t *testing.T) {
	store, _ := newTestStore(t)
	slider, _ := store.AddNode(catalog.TypeSlider, 0, 0)
	osc, _ := store.AddNode(catalog.TypeOscillator, 100, 0)
	_, err := store.AddEdge(slider, osc, "value", "frequency")
	require.NoError(t, err)
	before := store.NodeCount()

	store.DeleteNodes([]string{slider.String(), osc.String()})
	require.Equal(t, 0, store.NodeCount())

	require.True(t, store.Undo())
	assert.Equal(t, before, store.NodeCount())
	assert.Equal(t, 1, store.EdgeCount())
}
