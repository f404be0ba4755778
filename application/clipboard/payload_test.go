package clipboard

import (
	"testing"

	pkgerrors "patchbay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_StampsTypeAndVersion(t *testing.T) {
	text, err := Encode(Payload{
		Nodes: []PayloadNode{{ID: "a", Data: PayloadNodeData{NodeType: "SliderNode"}}},
	})
	require.NoError(t, err)

	decoded, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, PayloadType, decoded.Type)
	assert.Equal(t, PayloadVersion, decoded.Version)
}

func TestDecode_RoundTrip(t *testing.T) {
	original := Payload{
		Nodes: []PayloadNode{
			{ID: "a", X: 10, Y: 20, Data: PayloadNodeData{
				NodeType:   "OscillatorNode",
				Properties: map[string]any{"frequency": 440.0},
			}},
			{ID: "b", X: 110, Y: 20, Data: PayloadNodeData{NodeType: "AudioDestinationNode"}},
		},
		Edges: []PayloadEdge{
			{ID: "e", SourceID: "a", TargetID: "b", SourceHandle: "output", TargetHandle: "input"},
		},
	}

	text, err := Encode(original)
	require.NoError(t, err)
	decoded, err := Decode(text)
	require.NoError(t, err)

	require.Len(t, decoded.Nodes, 2)
	assert.Equal(t, "OscillatorNode", decoded.Nodes[0].Data.NodeType)
	assert.Equal(t, 440.0, decoded.Nodes[0].Data.Properties["frequency"])
	require.Len(t, decoded.Edges, 1)
	assert.Equal(t, "output", decoded.Edges[0].SourceHandle)
}

func TestDecode_LegacyFlatNodeFormat(t *testing.T) {
	// Older payloads put nodeType and properties at the top level of
	// each node instead of nesting them under data
	text := `{
		"type": "patchbay-nodes",
		"version": "1.0",
		"nodes": [
			{"id": "a", "x": 5, "y": 6, "nodeType": "SliderNode", "properties": {"value": 0.7}}
		]
	}`

	p, err := Decode(text)

	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "SliderNode", p.Nodes[0].Data.NodeType)
	assert.Equal(t, 0.7, p.Nodes[0].Data.Properties["value"])
	assert.Equal(t, 5.0, p.Nodes[0].X)
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "not JSON", text: "hello world"},
		{name: "wrong type tag", text: `{"type": "text/plain", "nodes": [{"id": "a"}]}`},
		{name: "no nodes", text: `{"type": "patchbay-nodes", "version": "1.0", "nodes": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}
