package history

import (
	"testing"

	"patchbay/domain/patches"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func propertyPatch(name string) patches.Patch {
	return patches.Patch{
		Kind:   patches.KindSetProperty,
		NodeID: "node",
		Name:   name,
		Before: 0.0,
		After:  1.0,
	}
}

func TestLog_Record_OutsideBatchIsOwnTransaction(t *testing.T) {
	log := NewLog(10, zap.NewNop())

	log.Record(propertyPatch("a"))
	log.Record(propertyPatch("b"))

	assert.Equal(t, 2, log.UndoDepth())
}

func TestLog_Batch_Coalesces(t *testing.T) {
	log := NewLog(10, zap.NewNop())

	log.Begin("gesture")
	log.Record(propertyPatch("a"))
	log.Record(propertyPatch("b"))
	log.Commit()

	require.Equal(t, 1, log.UndoDepth())
	tx, ok := log.PopUndo()
	require.True(t, ok)
	assert.Equal(t, "gesture", tx.Label)
	assert.Len(t, tx.Forward, 2)
}

func TestLog_Batch_Nested_OnlyOutermostCommitPushes(t *testing.T) {
	log := NewLog(10, zap.NewNop())

	log.Begin("outer")
	log.Record(propertyPatch("a"))
	log.Begin("inner")
	log.Record(propertyPatch("b"))
	log.Commit()
	assert.Equal(t, 0, log.UndoDepth())
	log.Commit()

	require.Equal(t, 1, log.UndoDepth())
	tx, _ := log.PopUndo()
	assert.Len(t, tx.Forward, 2)
}

func TestLog_EmptyBatch_PushesNothing(t *testing.T) {
	log := NewLog(10, zap.NewNop())

	log.Begin("noop")
	log.Commit()

	assert.False(t, log.CanUndo())
}

func TestLog_Record_ClearsRedo(t *testing.T) {
	log := NewLog(10, zap.NewNop())
	log.Record(propertyPatch("a"))
	tx, _ := log.PopUndo()
	log.PushRedo(tx)
	require.True(t, log.CanRedo())

	log.Record(propertyPatch("b"))

	assert.False(t, log.CanRedo())
}

func TestLog_PushUndo_KeepsRedo(t *testing.T) {
	// The redo flow returns a transaction to the undo stack without
	// wiping what remains on the redo stack
	log := NewLog(10, zap.NewNop())
	log.Record(propertyPatch("a"))
	log.Record(propertyPatch("b"))
	txB, _ := log.PopUndo()
	log.PushRedo(txB)
	txA, _ := log.PopUndo()
	log.PushRedo(txA)
	require.Equal(t, 0, log.UndoDepth())

	redoA, _ := log.PopRedo()
	log.PushUndo(redoA)

	assert.Equal(t, 1, log.UndoDepth())
	assert.True(t, log.CanRedo())
}

func TestLog_Suppress_DisablesRecording(t *testing.T) {
	log := NewLog(10, zap.NewNop())

	log.Suppress(func() {
		log.Record(propertyPatch("a"))
		log.Begin("hidden")
		log.Record(propertyPatch("b"))
		log.Commit()
	})

	assert.False(t, log.CanUndo())
}

func TestLog_Limit_DropsOldest(t *testing.T) {
	log := NewLog(3, zap.NewNop())

	for _, name := range []string{"a", "b", "c", "d"} {
		log.Record(propertyPatch(name))
	}

	require.Equal(t, 3, log.UndoDepth())
	tx, _ := log.PopUndo()
	assert.Equal(t, "d", tx.Forward[0].Name)
}

func TestLog_Clear_WipesEverything(t *testing.T) {
	log := NewLog(10, zap.NewNop())
	log.Record(propertyPatch("a"))
	tx, _ := log.PopUndo()
	log.PushRedo(tx)
	log.Begin("open")

	log.Clear()

	assert.False(t, log.CanUndo())
	assert.False(t, log.CanRedo())

	// A record after clear is a fresh single-step transaction, not part
	// of the wiped batch
	log.Record(propertyPatch("b"))
	assert.Equal(t, 1, log.UndoDepth())
}
