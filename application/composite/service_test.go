package composite

import (
	"context"
	"testing"

	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"
	"patchbay/infrastructure/persistence/memory"
	pkgerrors "patchbay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDefinitionService(t *testing.T) (*DefinitionService, *memory.DefinitionRepository) {
	t.Helper()
	repo := memory.NewDefinitionRepository()
	return NewDefinitionService(repo, catalog.Builtin(), zap.NewNop()), repo
}

func sampleDefinition(name string) *entities.CompositeNodeDefinition {
	return &entities.CompositeNodeDefinition{
		Name:    name,
		Inputs:  []entities.CompositePort{{ID: "in", Name: "In", Type: catalog.PortAudio}},
		Outputs: []entities.CompositePort{{ID: "out", Name: "Out", Type: catalog.PortAudio}},
		Internal: entities.InternalGraph{
			Nodes: []entities.InternalNode{
				{ID: "g", NodeType: catalog.TypeGain, X: 200, Y: 300},
			},
			Edges: []entities.InternalEdge{
				{ID: "e1", Source: "ext_input_in", Target: "g", SourceHandle: "output", TargetHandle: "input"},
				{ID: "e2", Source: "g", Target: "ext_output_out", SourceHandle: "output", TargetHandle: "input"},
			},
		},
	}
}

func TestDefinitionService_CreateAndGet(t *testing.T) {
	svc, _ := newDefinitionService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, sampleDefinition("Amp"))
	require.NoError(t, err)

	def, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Amp", def.Name)
	assert.False(t, def.IsPrebuilt)
}

func TestDefinitionService_Create_RequiresName(t *testing.T) {
	svc, _ := newDefinitionService(t)

	_, err := svc.Create(context.Background(), sampleDefinition(""))

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestDefinitionService_PrebuiltGuard(t *testing.T) {
	svc, repo := newDefinitionService(t)
	ctx := context.Background()
	repo.Seed([]*entities.CompositeNodeDefinition{sampleDefinition("Factory Amp")})

	prebuilt, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, prebuilt.IsPrebuilt)

	// Neither update nor delete may touch a prebuilt definition
	prebuilt.Name = "Hacked"
	assert.True(t, pkgerrors.IsValidation(svc.Update(ctx, prebuilt)))
	assert.True(t, pkgerrors.IsValidation(svc.Delete(ctx, 1)))

	unchanged, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Factory Amp", unchanged.Name)
}

func TestDefinitionService_SaveAs_CopiesPrebuilt(t *testing.T) {
	svc, repo := newDefinitionService(t)
	ctx := context.Background()
	repo.Seed([]*entities.CompositeNodeDefinition{sampleDefinition("Factory Amp")})

	newID, err := svc.SaveAs(ctx, 1, "My Amp")
	require.NoError(t, err)
	require.NotEqual(t, 1, newID)

	copied, err := svc.Get(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, "My Amp", copied.Name)
	assert.False(t, copied.IsPrebuilt)
	assert.Len(t, copied.Internal.Edges, 2)

	// The copy is editable
	copied.Description = "tweaked"
	assert.NoError(t, svc.Update(ctx, copied))
}

func TestDefinitionService_Update_EditableDefinition(t *testing.T) {
	svc, _ := newDefinitionService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, sampleDefinition("Amp"))
	require.NoError(t, err)

	def, err := svc.Get(ctx, id)
	require.NoError(t, err)
	def.Description = "with feeling"
	require.NoError(t, svc.Update(ctx, def))

	updated, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "with feeling", updated.Description)
}

func TestDefinitionService_Delete(t *testing.T) {
	svc, _ := newDefinitionService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, sampleDefinition("Amp"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDefinitionService_ExportImport_RoundTrip(t *testing.T) {
	svc, _ := newDefinitionService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, sampleDefinition("Amp"))
	require.NoError(t, err)

	data, err := svc.Export(ctx, id)
	require.NoError(t, err)

	imported, err := svc.Import(ctx, data)
	require.NoError(t, err)
	assert.NotEqual(t, id, imported.ID)
	assert.Equal(t, "Amp", imported.Name)
	assert.Len(t, imported.Internal.Edges, 2)
	assert.False(t, imported.IsPrebuilt)
}

func TestDefinitionService_Import_NormalizesLegacySentinels(t *testing.T) {
	svc, _ := newDefinitionService(t)

	data := []byte(`{
		"name": "Legacy Amp",
		"version": "1.0",
		"inputs": [{"id": "in", "name": "In", "type": "audio"}],
		"outputs": [{"id": "out", "name": "Out", "type": "audio"}],
		"internalGraph": {
			"nodes": [{"id": "g", "nodeType": "GainNode"}],
			"edges": [
				{"id": "e1", "source": "ext_in", "target": "g", "sourceHandle": "output", "targetHandle": "input"},
				{"id": "e2", "source": "g", "target": "ext_out", "sourceHandle": "output", "targetHandle": "input"}
			]
		}
	}`)

	imported, err := svc.Import(context.Background(), data)

	require.NoError(t, err)
	assert.Equal(t, "ext_input_in", imported.Internal.Edges[0].Source)
	assert.Equal(t, "ext_output_out", imported.Internal.Edges[1].Target)
}

func TestDefinitionService_Import_AllOrNothing(t *testing.T) {
	svc, _ := newDefinitionService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data string
	}{
		{name: "not JSON", data: "not json at all"},
		{name: "missing name", data: `{"version": "1.0", "internalGraph": {"nodes": [{"id": "g", "nodeType": "GainNode"}]}}`},
		{name: "missing version", data: `{"name": "Amp", "internalGraph": {"nodes": [{"id": "g", "nodeType": "GainNode"}]}}`},
		{name: "empty graph", data: `{"name": "Amp", "version": "1.0", "internalGraph": {"nodes": [], "edges": []}}`},
		{name: "unknown node type", data: `{"name": "Amp", "version": "1.0", "internalGraph": {"nodes": [{"id": "g", "nodeType": "NoSuchNode"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(ctx, []byte(tt.data))

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}

	// Nothing was stored along the way
	defs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)
}
