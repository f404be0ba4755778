package ports

import (
	"time"
)

// Diagnostic is a non-fatal failure report surfaced to the user as a
// transient message rather than an error that corrupts the graph
type Diagnostic struct {
	Component string
	NodeID    string
	Message   string
	Err       error
	At        time.Time
}

// DiagnosticSink receives non-fatal diagnostics from adapters, the
// reactive runtime, and the store
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// SystemClipboard abstracts the host clipboard. Implementations may
// fail (permission denial); callers fall back to the in-memory
// clipboard when they do.
type SystemClipboard interface {
	Write(text string) error
	Read() (string, error)
}
