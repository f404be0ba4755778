package services

import (
	"time"

	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"
	"patchbay/domain/core/valueobjects"
	"patchbay/domain/events"
	"patchbay/domain/patches"
	pkgerrors "patchbay/pkg/errors"
)

// AddEdge validates the endpoints and handles, applies the connection
// policy, realizes the engine-side connection, and records the whole
// thing as one atomic undo step.
//
// Connection policy: a control-typed output driving a native engine
// parameter takes direct control of it, so the parameter's base value
// is zeroed first (otherwise the incoming signal would sum with the
// base instead of replacing it). An audio-typed output modulates around
// the base value and leaves it untouched. The zeroing is recorded as an
// ordinary property patch inside the same transaction, so undo and
// redo replay it bit for bit without re-running the policy.
func (s *GraphStore) AddEdge(sourceID, targetID valueobjects.NodeID, sourceHandle, targetHandle string) (valueobjects.EdgeID, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.addEdgeLocked(sourceID, targetID, sourceHandle, targetHandle)
	s.metrics.RecordMutation("add_edge", time.Since(start), err)
	return id, err
}

func (s *GraphStore) addEdgeLocked(sourceID, targetID valueobjects.NodeID, sourceHandle, targetHandle string) (valueobjects.EdgeID, error) {
	source, ok := s.nodes[sourceID.String()]
	if !ok {
		return valueobjects.EdgeID{}, pkgerrors.NewNotFound("source node not found: " + sourceID.String())
	}
	target, ok := s.nodes[targetID.String()]
	if !ok {
		return valueobjects.EdgeID{}, pkgerrors.NewNotFound("target node not found: " + targetID.String())
	}
	if len(s.edges) >= s.cfg.MaxEdgesPerGraph {
		return valueobjects.EdgeID{}, pkgerrors.NewValidation("maximum edges reached")
	}

	sourcePort, ok := source.Metadata().Output(sourceHandle)
	if !ok {
		return valueobjects.EdgeID{}, pkgerrors.NewValidation(
			"node type " + source.NodeType() + " has no output " + sourceHandle)
	}
	targetPort, ok := target.Metadata().Input(targetHandle)
	if !ok {
		return valueobjects.EdgeID{}, pkgerrors.NewValidation(
			"node type " + target.NodeType() + " has no input " + targetHandle)
	}

	// An edge describing an already-connected 4-tuple is idempotent
	tuple := entities.AudioConnection{
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceOutput: sourceHandle,
		TargetInput:  targetHandle,
	}
	for _, existing := range s.edges {
		if existing.Connection().Key() == tuple.Key() {
			return existing.ID, nil
		}
	}

	s.history.Begin("add edge")
	defer s.history.Commit()

	if s.isDirectControlLocked(sourcePort, targetPort, target) {
		s.setPropertyPatchLocked(targetID.String(), targetHandle, 0.0)
	}

	edge := entities.NewGraphEdge(sourceID, targetID, sourceHandle, targetHandle)
	s.edges[edge.ID.String()] = edge
	s.history.Record(patches.Patch{
		Kind: patches.KindAddEdge,
		Edge: snapshotEdge(edge),
	})
	s.realizeConnectionLocked(edge)
	s.addEvent(events.NewEdgeAdded(edge.ID.String(), sourceID.String(), targetID.String()))
	s.bumpLocked()
	return edge.ID, nil
}

// isDirectControlLocked decides whether an edge takes direct control of
// an engine parameter. The decision keys on the source port's declared
// type, not the source node's backing kind: an audio-typed output
// always modulates, a control-typed output always sets.
func (s *GraphStore) isDirectControlLocked(sourcePort, targetPort catalog.Port, target *entities.GraphNode) bool {
	return sourcePort.Type == catalog.PortControl &&
		targetPort.Param &&
		target.Metadata().Native
}

// setPropertyPatchLocked updates a property through the adapter and
// records the change with its real prior value
func (s *GraphStore) setPropertyPatchLocked(nodeID, name string, value any) {
	ad, ok := s.adapters[nodeID]
	if !ok {
		return
	}
	before, _ := ad.GetProperty(name)
	ad.UpdateProperty(name, value)
	s.history.Record(patches.Patch{
		Kind:   patches.KindSetProperty,
		NodeID: nodeID,
		Name:   name,
		Before: before,
		After:  value,
	})
	s.addEvent(events.NewNodePropertyChanged(nodeID, name, value))
}

// realizeConnectionLocked makes the edge's semantic connection live if
// the 4-tuple is not realized yet
func (s *GraphStore) realizeConnectionLocked(edge *entities.GraphEdge) {
	conn := edge.Connection()
	if _, exists := s.connections[conn.Key()]; exists {
		return
	}

	sourceAd, ok := s.adapters[edge.SourceID.String()]
	if !ok {
		return
	}
	targetAd, ok := s.adapters[edge.TargetID.String()]
	if !ok {
		return
	}

	s.connections[conn.Key()] = conn
	sourceAd.ConnectTo(targetAd, edge.SourceHandle, edge.TargetHandle)
}

// RemoveEdge tears an edge down. Removing the last edge for a
// direct-controlled parameter restores the parameter's metadata
// default, recorded in the same transaction. A missing id is a no-op.
func (s *GraphStore) RemoveEdge(id valueobjects.EdgeID) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edges[id.String()]; !ok {
		return
	}
	s.history.Begin("remove edge")
	s.removeEdgeLocked(id.String(), true)
	s.history.Commit()
	s.metrics.RecordMutation("remove_edge", time.Since(start), nil)
}

// removeEdgeLocked removes one edge. With record set it writes the
// removal (and any policy restoration) into history; patch application
// passes record=false because the inverse patches already carry the
// exact property values to replay.
func (s *GraphStore) removeEdgeLocked(id string, record bool) {
	edge, ok := s.edges[id]
	if !ok {
		return
	}

	if record {
		s.history.Record(patches.Patch{
			Kind: patches.KindRemoveEdge,
			Edge: snapshotEdge(edge),
		})
	}

	delete(s.edges, id)
	s.releaseConnectionLocked(edge)

	if record {
		s.restoreControlledParamLocked(edge)
	}

	s.addEvent(events.NewEdgeRemoved(id))
	s.bumpLocked()
}

// releaseConnectionLocked tears the semantic connection down once the
// last edge describing its 4-tuple is gone
func (s *GraphStore) releaseConnectionLocked(edge *entities.GraphEdge) {
	conn := edge.Connection()
	for _, other := range s.edges {
		if other.Connection().Key() == conn.Key() {
			return
		}
	}
	if _, exists := s.connections[conn.Key()]; !exists {
		return
	}
	delete(s.connections, conn.Key())

	sourceAd, ok := s.adapters[edge.SourceID.String()]
	if !ok {
		return
	}
	targetAd, ok := s.adapters[edge.TargetID.String()]
	if !ok {
		return
	}
	sourceAd.DisconnectFrom(targetAd, edge.SourceHandle, edge.TargetHandle)
}

// restoreControlledParamLocked puts a direct-controlled parameter back
// to its metadata default when its controlling edge goes away
func (s *GraphStore) restoreControlledParamLocked(edge *entities.GraphEdge) {
	source, ok := s.nodes[edge.SourceID.String()]
	if !ok {
		return
	}
	target, ok := s.nodes[edge.TargetID.String()]
	if !ok {
		return
	}
	sourcePort, ok := source.Metadata().Output(edge.SourceHandle)
	if !ok {
		return
	}
	targetPort, ok := target.Metadata().Input(edge.TargetHandle)
	if !ok {
		return
	}
	if !s.isDirectControlLocked(sourcePort, targetPort, target) {
		return
	}

	prop, ok := target.Metadata().Property(edge.TargetHandle)
	if !ok {
		return
	}
	s.setPropertyPatchLocked(edge.TargetID.String(), edge.TargetHandle, prop.Default)
}

// Edge returns the edge entity for an id
func (s *GraphStore) Edge(id valueobjects.EdgeID) (*entities.GraphEdge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[id.String()]
	return edge, ok
}

// Connections returns the live semantic connections
func (s *GraphStore) Connections() []entities.AudioConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.AudioConnection, 0, len(s.connections))
	for _, c := range s.connections {
		out = append(out, c)
	}
	return out
}
