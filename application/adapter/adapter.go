package adapter

import (
	"time"

	"patchbay/application/ports"
	"patchbay/application/runtime"
	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"

	"go.uber.org/zap"
)

// Adapter presents one capability surface over two different backing
// kinds: a native audio-engine object or a custom-runtime entry. The
// variant is selected at construction time by a static type-membership
// check against the metadata catalog.
type Adapter interface {
	// Initialize attaches the backing. Idempotent. When the engine
	// factory is not ready yet, the adapter still marks itself
	// initialized and defers engine-object creation to a later
	// reactive pass driven by the store.
	Initialize() error

	// EnsureBacking creates the backing engine object if it was
	// deferred; no-op for custom nodes and already-backed nodes
	EnsureBacking() error

	// Cleanup disposes subscriptions and the backing object. Safe to
	// call twice.
	Cleanup()

	// Attached reports whether the backing object exists
	Attached() bool

	// UpdateProperty writes the property and forwards it to a live
	// backing. Unknown names are stored but have no engine effect.
	UpdateProperty(name string, value any)

	// GetProperty reads a property, falling back to metadata defaults
	GetProperty(name string) (any, bool)

	// ConnectTo realizes a connection on the backing and records it on
	// both endpoints' connection lists
	ConnectTo(target Adapter, sourceOutput, targetInput string)

	// DisconnectFrom tears the connection down on the backing and
	// removes it from both endpoints' connection lists
	DisconnectFrom(target Adapter, sourceOutput, targetInput string)

	// Rebuild replaces the backing engine object with a fresh one;
	// used on playback start because stopped sources cannot restart.
	// No-op for custom nodes.
	Rebuild() error

	// Node returns the canonical graph node
	Node() *entities.GraphNode

	// EngineNode returns the live engine object, or nil for custom
	// nodes and deferred backings
	EngineNode() ports.EngineNode

	// Connections returns the connections recorded on this endpoint
	Connections() []entities.AudioConnection
}

// Deps carries the collaborators an adapter needs
type Deps struct {
	Catalog *catalog.Catalog
	Engine  ports.AudioEngine
	Runtime *runtime.Runtime
	Sink    ports.DiagnosticSink
	Logger  *zap.Logger
}

// New selects the adapter variant for the node's type
func New(node *entities.GraphNode, deps Deps) Adapter {
	base := baseAdapter{node: node, deps: deps}
	if deps.Catalog.IsNative(node.NodeType()) {
		return &nativeAdapter{baseAdapter: base}
	}
	return &customAdapter{baseAdapter: base}
}

// baseAdapter carries the state both variants share
type baseAdapter struct {
	node  *entities.GraphNode
	deps  Deps
	conns []entities.AudioConnection
}

// Node returns the canonical graph node
func (a *baseAdapter) Node() *entities.GraphNode {
	return a.node
}

// Connections returns a copy of the recorded connection list
func (a *baseAdapter) Connections() []entities.AudioConnection {
	return append([]entities.AudioConnection(nil), a.conns...)
}

func (a *baseAdapter) recordConnection(conn entities.AudioConnection) {
	for _, c := range a.conns {
		if c.Key() == conn.Key() {
			return
		}
	}
	a.conns = append(a.conns, conn)
}

func (a *baseAdapter) forgetConnection(conn entities.AudioConnection) {
	kept := a.conns[:0]
	for _, c := range a.conns {
		if c.Key() == conn.Key() {
			continue
		}
		kept = append(kept, c)
	}
	a.conns = kept
}

// report surfaces a backing failure as a non-fatal diagnostic; backing
// errors never propagate as exceptions that would corrupt the graph
func (a *baseAdapter) report(message string, err error) {
	if err == nil {
		return
	}
	a.deps.Logger.Warn(message,
		zap.String("nodeId", a.node.ID().String()),
		zap.String("nodeType", a.node.NodeType()),
		zap.Error(err))
	if a.deps.Sink != nil {
		a.deps.Sink.Report(ports.Diagnostic{
			Component: "adapter",
			NodeID:    a.node.ID().String(),
			Message:   message,
			Err:       err,
			At:        time.Now(),
		})
	}
}
