package composite

import (
	"testing"

	"patchbay/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSentinel(t *testing.T) {
	inputs := []entities.CompositePort{{ID: "freq"}}
	outputs := []entities.CompositePort{{ID: "out"}}

	tests := []struct {
		name          string
		id            string
		wantPort      string
		wantDirection string
		wantOK        bool
	}{
		{name: "input prefix", id: "ext_input_freq", wantPort: "freq", wantDirection: "input", wantOK: true},
		{name: "output prefix", id: "ext_output_out", wantPort: "out", wantDirection: "output", wantOK: true},
		{name: "legacy input resolved by port list", id: "ext_freq", wantPort: "freq", wantDirection: "input", wantOK: true},
		{name: "legacy output resolved by port list", id: "ext_out", wantPort: "out", wantDirection: "output", wantOK: true},
		{name: "legacy prefix matching no port", id: "ext_mystery", wantOK: false},
		{name: "ordinary node id", id: "7c2e8d90", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, direction, ok := ParseSentinel(tt.id, inputs, outputs)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantPort, port)
				assert.Equal(t, tt.wantDirection, direction)
			}
		})
	}
}

func TestSentinelID(t *testing.T) {
	assert.Equal(t, "ext_input_freq", SentinelID("input", "freq"))
	assert.Equal(t, "ext_output_out", SentinelID("output", "out"))
}

func TestNormalizeSentinels_RewritesLegacyIDs(t *testing.T) {
	inputs := []entities.CompositePort{{ID: "freq"}}
	outputs := []entities.CompositePort{{ID: "out"}}
	g := entities.InternalGraph{
		Nodes: []entities.InternalNode{{ID: "gain1", NodeType: "GainNode"}},
		Edges: []entities.InternalEdge{
			{ID: "e1", Source: "ext_freq", Target: "gain1", SourceHandle: "value", TargetHandle: "gain"},
			{ID: "e2", Source: "gain1", Target: "ext_out", SourceHandle: "output", TargetHandle: "input"},
		},
		Connections: []entities.InternalConnection{
			{Source: "ext_freq", Target: "gain1", SourceOutput: "value", TargetInput: "gain"},
		},
	}

	normalized := NormalizeSentinels(g, inputs, outputs)

	assert.Equal(t, "ext_input_freq", normalized.Edges[0].Source)
	assert.Equal(t, "gain1", normalized.Edges[0].Target)
	assert.Equal(t, "ext_output_out", normalized.Edges[1].Target)
	assert.Equal(t, "ext_input_freq", normalized.Connections[0].Source)

	// The original graph is untouched
	require.Equal(t, "ext_freq", g.Edges[0].Source)
}
