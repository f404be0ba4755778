package services

import (
	"sync"
	"time"

	"patchbay/application/adapter"
	"patchbay/application/history"
	"patchbay/application/ports"
	"patchbay/application/runtime"
	"patchbay/domain/catalog"
	"patchbay/domain/config"
	"patchbay/domain/core/entities"
	"patchbay/domain/core/valueobjects"
	"patchbay/domain/events"
	"patchbay/domain/patches"
	pkgerrors "patchbay/pkg/errors"
	"patchbay/pkg/observability"

	"go.uber.org/zap"
)

// GraphStore owns the canonical node, edge and connection collections.
// It creates and destroys node adapters and their backing engine
// objects, applies the direct-control-vs-modulation connection policy,
// and records every mutation as an undo-capable patch.
//
// The collections have a single writer: every mutation goes through a
// store action under one mutex. Adapters and the custom runtime read
// the collections but mutate only their own property and output maps.
type GraphStore struct {
	mu      sync.Mutex
	cfg     *config.DomainConfig
	catalog *catalog.Catalog
	engine  ports.AudioEngine
	rt      *runtime.Runtime
	history *history.Log
	sink    ports.DiagnosticSink
	logger  *zap.Logger
	metrics *observability.Metrics

	nodes       map[string]*entities.GraphNode
	adapters    map[string]adapter.Adapter
	edges       map[string]*entities.GraphEdge
	connections map[string]entities.AudioConnection

	changeCounter uint64
	playing       bool
	events        []events.DomainEvent
}

// Deps carries the collaborators a GraphStore needs
// Explicit construction keeps multiple independent graph instances
// possible in tests and in the subgraph editor
type Deps struct {
	Config  *config.DomainConfig
	Catalog *catalog.Catalog
	Engine  ports.AudioEngine
	Runtime *runtime.Runtime
	History *history.Log
	Sink    ports.DiagnosticSink
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// NewGraphStore creates a graph store
func NewGraphStore(deps Deps) *GraphStore {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hist := deps.History
	if hist == nil {
		hist = history.NewLog(cfg.HistoryLimit, logger)
	}

	return &GraphStore{
		cfg:         cfg,
		catalog:     deps.Catalog,
		engine:      deps.Engine,
		rt:          deps.Runtime,
		history:     hist,
		sink:        deps.Sink,
		logger:      logger,
		metrics:     deps.Metrics,
		nodes:       make(map[string]*entities.GraphNode),
		adapters:    make(map[string]adapter.Adapter),
		edges:       make(map[string]*entities.GraphEdge),
		connections: make(map[string]entities.AudioConnection),
	}
}

func (s *GraphStore) adapterDeps() adapter.Deps {
	return adapter.Deps{
		Catalog: s.catalog,
		Engine:  s.engine,
		Runtime: s.rt,
		Sink:    s.sink,
		Logger:  s.logger,
	}
}

// AddNode validates the type, inserts a node with metadata-derived
// default properties, and triggers adapter initialization.
// An unknown node type is the one case that surfaces as a hard error:
// creating an unrecognized node is a programming error, not a runtime
// race.
func (s *GraphStore) AddNode(nodeType string, x, y float64) (valueobjects.NodeID, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.addNodeLocked(nodeType, x, y, nil)
	s.metrics.RecordMutation("add_node", time.Since(start), err)
	return id, err
}

func (s *GraphStore) addNodeLocked(nodeType string, x, y float64, props map[string]any) (valueobjects.NodeID, error) {
	meta, ok := s.catalog.Lookup(nodeType)
	if !ok {
		return valueobjects.NodeID{}, pkgerrors.NewValidation("unknown node type: " + nodeType)
	}
	if len(s.nodes) >= s.cfg.MaxNodesPerGraph {
		return valueobjects.NodeID{}, pkgerrors.NewValidation("maximum nodes reached")
	}

	pos, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return valueobjects.NodeID{}, err
	}

	node := entities.NewGraphNode(meta, pos)
	for name, value := range props {
		node.SetProperty(name, value)
	}

	s.attachLocked(node)
	s.history.Record(patches.Patch{
		Kind: patches.KindAddNode,
		Node: snapshotNode(node),
	})
	s.addEvent(events.NewNodeAdded(node.ID().String(), nodeType))
	s.bumpLocked()
	return node.ID(), nil
}

// attachLocked inserts the node and runs adapter initialization
func (s *GraphStore) attachLocked(node *entities.GraphNode) {
	ad := adapter.New(node, s.adapterDeps())
	id := node.ID().String()
	s.nodes[id] = node
	s.adapters[id] = ad

	if err := ad.Initialize(); err != nil {
		// Initialization failures are non-fatal; the node stays in the
		// graph and EnsureBackings retries once the engine is ready
		s.logger.Warn("adapter initialization failed",
			zap.String("nodeId", id),
			zap.String("nodeType", node.NodeType()),
			zap.Error(err))
	}
}

// EnsureBackings drives the deferred-initialization reactive pass:
// adapters that could not create their engine object yet get another
// chance. The store is the single source of truth for live backings.
func (s *GraphStore) EnsureBackings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ad := range s.adapters {
		_ = ad.EnsureBacking()
	}
}

// RemoveNode detaches the adapter, removes every edge and connection
// referencing the node in either direction, and deletes it.
// A missing id is a no-op, not an error.
func (s *GraphStore) RemoveNode(id valueobjects.NodeID) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id.String()]; !ok {
		return
	}
	s.history.Begin("remove node")
	s.removeNodeLocked(id.String(), true)
	s.history.Commit()
	s.metrics.RecordMutation("remove_node", time.Since(start), nil)
}

func (s *GraphStore) removeNodeLocked(id string, record bool) {
	node, ok := s.nodes[id]
	if !ok {
		return
	}

	// Tear down touching edges first so their patches restore them
	// before the node patch on undo
	for _, edgeID := range s.edgesTouchingLocked(id) {
		s.removeEdgeLocked(edgeID, record)
	}

	if record {
		s.history.Record(patches.Patch{
			Kind: patches.KindRemoveNode,
			Node: snapshotNode(node),
		})
	}

	if ad, ok := s.adapters[id]; ok {
		ad.Cleanup()
	}
	delete(s.adapters, id)
	delete(s.nodes, id)
	s.addEvent(events.NewNodeRemoved(id, node.NodeType()))
	s.bumpLocked()
}

func (s *GraphStore) edgesTouchingLocked(id string) []string {
	var out []string
	for edgeID, edge := range s.edges {
		if edge.SourceID.String() == id || edge.TargetID.String() == id {
			out = append(out, edgeID)
		}
	}
	return out
}

// UpdateNodeProperty delegates to the adapter and bumps the change
// counter dependent views use to know a re-sync is due.
// A missing node is a no-op.
func (s *GraphStore) UpdateNodeProperty(id valueobjects.NodeID, name string, value any) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.adapters[id.String()]
	if !ok {
		return
	}

	before, _ := ad.GetProperty(name)
	ad.UpdateProperty(name, value)
	s.history.Record(patches.Patch{
		Kind:   patches.KindSetProperty,
		NodeID: id.String(),
		Name:   name,
		Before: before,
		After:  value,
	})
	s.addEvent(events.NewNodePropertyChanged(id.String(), name, value))
	s.bumpLocked()
	s.metrics.RecordMutation("update_property", time.Since(start), nil)
}

// NodeProperty reads a property through the adapter, falling back to
// the metadata default. Returns a not-found signal for missing nodes
// rather than failing.
func (s *GraphStore) NodeProperty(id valueobjects.NodeID, name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad, ok := s.adapters[id.String()]
	if !ok {
		return nil, false
	}
	return ad.GetProperty(name)
}

// MoveNode updates a node's canvas position
func (s *GraphStore) MoveNode(id valueobjects.NodeID, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id.String()]
	if !ok {
		return
	}
	pos, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return
	}

	from := node.Position()
	node.SetPosition(pos)
	s.history.Record(patches.Patch{
		Kind:   patches.KindMoveNode,
		NodeID: id.String(),
		FromX:  from.X(),
		FromY:  from.Y(),
		ToX:    x,
		ToY:    y,
	})
	s.addEvent(events.NewNodeMoved(id.String(), x, y))
	s.bumpLocked()
}

// BeginBatch opens an explicit coalescing scope so a multi-step
// gesture undoes as one step
func (s *GraphStore) BeginBatch(label string) {
	s.history.Begin(label)
}

// EndBatch closes the coalescing scope
func (s *GraphStore) EndBatch() {
	s.history.Commit()
}

// ClearAllNodes removes every node and edge and resets undo history.
// A full-graph clear is a boundary, not a recordable step.
func (s *GraphStore) ClearAllNodes() {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Suppress(func() {
		for id := range s.nodes {
			s.removeNodeLocked(id, false)
		}
	})
	if s.rt != nil {
		s.rt.Clear()
	}
	s.edges = make(map[string]*entities.GraphEdge)
	s.connections = make(map[string]entities.AudioConnection)
	s.history.Clear()
	s.addEvent(events.NewGraphCleared())
	s.bumpLocked()
	s.metrics.RecordMutation("clear_all", time.Since(start), nil)
}

// CanUndo reports whether an undo step is available
func (s *GraphStore) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available
func (s *GraphStore) CanRedo() bool {
	return s.history.CanRedo()
}

// Undo applies the newest transaction's inverse patches atomically
// with patch recording suppressed
func (s *GraphStore) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.history.PopUndo()
	if !ok {
		return false
	}
	s.history.Suppress(func() {
		for _, p := range tx.Inverse() {
			s.applyPatchLocked(p)
		}
	})
	s.history.PushRedo(tx)
	s.bumpLocked()
	return true
}

// Redo re-applies the newest undone transaction
func (s *GraphStore) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.history.PopRedo()
	if !ok {
		return false
	}
	s.history.Suppress(func() {
		for _, p := range tx.Forward {
			s.applyPatchLocked(p)
		}
	})
	s.history.PushUndo(tx)
	s.bumpLocked()
	return true
}

// ChangeCounter returns the monotonically increasing mutation counter
func (s *GraphStore) ChangeCounter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeCounter
}

// NodeCount returns the number of nodes in the canonical graph
func (s *GraphStore) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges in the canonical graph
func (s *GraphStore) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

// Node returns the node entity for an id
func (s *GraphStore) Node(id valueobjects.NodeID) (*entities.GraphNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id.String()]
	return node, ok
}

// maxPendingEvents bounds the event buffer between drains. With no
// client polling, the oldest events are shed first.
const maxPendingEvents = 1024

// DrainEvents returns and clears the accumulated domain events
func (s *GraphStore) DrainEvents() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

func (s *GraphStore) addEvent(e events.DomainEvent) {
	s.events = append(s.events, e)
	if overflow := len(s.events) - maxPendingEvents; overflow > 0 {
		s.events = append([]events.DomainEvent(nil), s.events[overflow:]...)
	}
}

func (s *GraphStore) bumpLocked() {
	s.changeCounter++
	s.metrics.SetGraphSize(len(s.nodes), len(s.edges))
	s.metrics.SetUndoDepth(s.history.UndoDepth())
}

func snapshotNode(node *entities.GraphNode) *patches.NodeSnapshot {
	return &patches.NodeSnapshot{
		ID:         node.ID().String(),
		NodeType:   node.NodeType(),
		X:          node.Position().X(),
		Y:          node.Position().Y(),
		Properties: node.Properties(),
	}
}

func snapshotEdge(edge *entities.GraphEdge) *patches.EdgeSnapshot {
	return &patches.EdgeSnapshot{
		ID:           edge.ID.String(),
		SourceID:     edge.SourceID.String(),
		TargetID:     edge.TargetID.String(),
		SourceHandle: edge.SourceHandle,
		TargetHandle: edge.TargetHandle,
	}
}
