package diagnostics

import (
	"sync"

	"patchbay/application/ports"

	"go.uber.org/zap"
)

// Sink logs diagnostics and keeps a bounded ring of recent entries so
// the HTTP surface can expose what degraded and why. Backing failures
// are reported here instead of propagating; the graph stays consistent
// while the affected node runs degraded.
type Sink struct {
	mu     sync.Mutex
	logger *zap.Logger
	recent []ports.Diagnostic
	limit  int
}

// NewSink creates a sink retaining the last limit diagnostics
func NewSink(logger *zap.Logger, limit int) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 100
	}
	return &Sink{logger: logger, limit: limit}
}

// Report records one diagnostic
func (s *Sink) Report(d ports.Diagnostic) {
	s.logger.Warn("component degraded",
		zap.String("component", d.Component),
		zap.String("nodeId", d.NodeID),
		zap.String("message", d.Message),
		zap.Error(d.Err))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, d)
	if len(s.recent) > s.limit {
		s.recent = s.recent[len(s.recent)-s.limit:]
	}
}

// Recent returns a copy of the retained diagnostics, newest last
func (s *Sink) Recent() []ports.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Diagnostic(nil), s.recent...)
}
