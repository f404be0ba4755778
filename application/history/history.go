package history

import (
	"sync"

	"patchbay/domain/patches"

	"go.uber.org/zap"
)

// Log owns the undo and redo stacks of transactions
//
// Mutations recorded between Begin and Commit coalesce into one
// transaction, so "add node + connect it" undoes as a single step.
// Recording is suppressed while patches are being applied for undo or
// redo, to avoid recording the undo itself.
type Log struct {
	mu         sync.Mutex
	undo       []patches.Transaction
	redo       []patches.Transaction
	current    *patches.Transaction
	depth      int
	suppressed bool
	limit      int
	logger     *zap.Logger
}

// NewLog creates a history log capped at limit transactions
func NewLog(limit int, logger *zap.Logger) *Log {
	return &Log{
		limit:  limit,
		logger: logger,
	}
}

// Begin opens a batching scope. Scopes nest; only the outermost Commit
// pushes the transaction.
func (l *Log) Begin(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.suppressed {
		return
	}
	l.depth++
	if l.depth == 1 {
		l.current = &patches.Transaction{Label: label}
	}
}

// Commit closes the innermost batching scope. Closing the outermost
// scope pushes the coalesced transaction onto the undo stack and
// clears the redo stack.
func (l *Log) Commit() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.suppressed || l.depth == 0 {
		return
	}
	l.depth--
	if l.depth > 0 {
		return
	}

	tx := l.current
	l.current = nil
	if tx == nil || tx.IsEmpty() {
		return
	}
	l.pushUndoLocked(*tx)
	l.redo = nil
}

// Record adds a patch to the open transaction. Outside a batching
// scope the patch becomes its own single-step transaction.
func (l *Log) Record(p patches.Patch) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.suppressed {
		return
	}
	if l.current != nil {
		l.current.Forward = append(l.current.Forward, p)
		return
	}
	l.pushUndoLocked(patches.Transaction{Forward: []patches.Patch{p}})
	l.redo = nil
}

// Suppress runs fn with patch recording disabled
func (l *Log) Suppress(fn func()) {
	l.mu.Lock()
	prev := l.suppressed
	l.suppressed = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.suppressed = prev
		l.mu.Unlock()
	}()

	fn()
}

// PopUndo removes and returns the newest undo transaction
func (l *Log) PopUndo() (patches.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.undo) == 0 {
		return patches.Transaction{}, false
	}
	tx := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	return tx, true
}

// PopRedo removes and returns the newest redo transaction
func (l *Log) PopRedo() (patches.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.redo) == 0 {
		return patches.Transaction{}, false
	}
	tx := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	return tx, true
}

// PushUndo returns a transaction to the undo stack without touching
// the redo stack; used by the redo flow
func (l *Log) PushUndo(tx patches.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pushUndoLocked(tx)
}

// PushRedo stores an undone transaction for redo
func (l *Log) PushRedo(tx patches.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redo = append(l.redo, tx)
}

// CanUndo reports whether an undo step is available
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo) > 0
}

// CanRedo reports whether a redo step is available
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo) > 0
}

// UndoDepth returns the current undo stack depth
func (l *Log) UndoDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo)
}

// Clear wipes both stacks and any open batch
// A full-graph clear is a boundary, not a recordable step
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = nil
	l.redo = nil
	l.current = nil
	l.depth = 0
}

func (l *Log) pushUndoLocked(tx patches.Transaction) {
	l.undo = append(l.undo, tx)
	if l.limit > 0 && len(l.undo) > l.limit {
		l.undo = l.undo[len(l.undo)-l.limit:]
	}
}
