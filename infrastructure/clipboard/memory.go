package clipboard

import "sync"

// MemoryClipboard is a process-local system clipboard implementation.
// The server has no real OS clipboard; copy-paste still works across
// every editing context within the session.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

// NewMemoryClipboard creates an empty clipboard
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// Write stores the text
func (c *MemoryClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

// Read returns the stored text
func (c *MemoryClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}
