package clipboard

import (
	"sync"

	"patchbay/application/ports"
	pkgerrors "patchbay/pkg/errors"

	"go.uber.org/zap"
)

// GraphContext is a copy-paste-capable editing surface. The main
// canvas and each open subgraph editor register as contexts; keyboard
// shortcuts route to whichever holds focus.
type GraphContext interface {
	// CopySelection builds a payload from the selected node ids.
	// Edges are included only when both endpoints are selected.
	CopySelection(ids []string) (Payload, bool)

	// PasteNodes materializes a payload with fresh ids, returning the
	// new node ids
	PasteNodes(p Payload) []string

	// DeleteNodes removes the given nodes as one undo step
	DeleteNodes(ids []string)
}

// FocusMain is the context name of the main canvas
const FocusMain = "main"

// Coordinator routes copy, cut and paste to the focused graph context
// and mirrors payloads onto the system clipboard. When the system
// clipboard is unavailable or rejects the write, an in-memory fallback
// keeps copy-paste working within the session.
type Coordinator struct {
	mu       sync.Mutex
	system   ports.SystemClipboard
	fallback string
	contexts map[string]GraphContext
	focus    string
	logger   *zap.Logger
}

// NewCoordinator creates a coordinator. The system clipboard may be
// nil; the in-memory fallback then carries everything.
func NewCoordinator(system ports.SystemClipboard, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		system:   system,
		contexts: make(map[string]GraphContext),
		focus:    FocusMain,
		logger:   logger,
	}
}

// Register adds a named graph context
func (c *Coordinator) Register(name string, ctx GraphContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contexts[name] = ctx
}

// Unregister removes a context; focus falls back to the main canvas
func (c *Coordinator) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.contexts, name)
	if c.focus == name {
		c.focus = FocusMain
	}
}

// SetFocus moves keyboard-shortcut routing to the named context
func (c *Coordinator) SetFocus(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.contexts[name]; ok {
		c.focus = name
	}
}

// Focus returns the currently focused context name
func (c *Coordinator) Focus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

func (c *Coordinator) focused() (GraphContext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.contexts[c.focus]
	return ctx, ok
}

// Copy serializes the focused context's selection to the clipboard
func (c *Coordinator) Copy(ids []string) error {
	ctx, ok := c.focused()
	if !ok {
		return pkgerrors.NewNotFound("no focused graph context")
	}
	payload, ok := ctx.CopySelection(ids)
	if !ok {
		return pkgerrors.NewValidation("nothing to copy")
	}
	return c.store(payload)
}

// Cut copies the selection and then deletes it as one undo step
func (c *Coordinator) Cut(ids []string) error {
	ctx, ok := c.focused()
	if !ok {
		return pkgerrors.NewNotFound("no focused graph context")
	}
	payload, ok := ctx.CopySelection(ids)
	if !ok {
		return pkgerrors.NewValidation("nothing to cut")
	}
	if err := c.store(payload); err != nil {
		return err
	}
	ctx.DeleteNodes(ids)
	return nil
}

// Paste materializes the clipboard payload in the focused context and
// returns the new node ids. Foreign clipboard content is ignored.
func (c *Coordinator) Paste() ([]string, error) {
	ctx, ok := c.focused()
	if !ok {
		return nil, pkgerrors.NewNotFound("no focused graph context")
	}
	text, err := c.load()
	if err != nil {
		return nil, err
	}
	payload, err := Decode(text)
	if err != nil {
		return nil, err
	}
	return ctx.PasteNodes(payload), nil
}

func (c *Coordinator) store(payload Payload) error {
	text, err := Encode(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.fallback = text
	system := c.system
	c.mu.Unlock()

	if system != nil {
		if err := system.Write(text); err != nil {
			// Fallback already holds the payload; degrade quietly
			c.logger.Warn("system clipboard write failed, using in-memory fallback",
				zap.Error(err))
		}
	}
	return nil
}

func (c *Coordinator) load() (string, error) {
	c.mu.Lock()
	system := c.system
	fallback := c.fallback
	c.mu.Unlock()

	if system != nil {
		if text, err := system.Read(); err == nil && text != "" {
			return text, nil
		}
	}
	if fallback == "" {
		return "", pkgerrors.NewNotFound("clipboard is empty")
	}
	return fallback, nil
}
