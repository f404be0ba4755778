package services

import (
	"patchbay/domain/core/entities"
	"patchbay/domain/core/valueobjects"
	"patchbay/domain/patches"
	pkgerrors "patchbay/pkg/errors"

	"go.uber.org/zap"
)

// Snapshot is the serializable state of a whole graph
type Snapshot struct {
	Nodes []patches.NodeSnapshot `json:"nodes"`
	Edges []patches.EdgeSnapshot `json:"edges"`
}

// Snapshot captures the current graph for persistence
func (s *GraphStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Nodes: make([]patches.NodeSnapshot, 0, len(s.nodes)),
		Edges: make([]patches.EdgeSnapshot, 0, len(s.edges)),
	}
	for _, node := range s.nodes {
		snap.Nodes = append(snap.Nodes, *snapshotNode(node))
	}
	for _, edge := range s.edges {
		snap.Edges = append(snap.Edges, *snapshotEdge(edge))
	}
	return snap
}

// LoadSnapshot replaces the graph with a saved one. Loading wipes undo
// history; nodes with unknown types are skipped with a warning rather
// than failing the whole load. Edges describing the same 4-tuple are
// all kept visually but realized as a single connection.
func (s *GraphStore) LoadSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Suppress(func() {
		for id := range s.nodes {
			s.removeNodeLocked(id, false)
		}
		s.edges = make(map[string]*entities.GraphEdge)
		s.connections = make(map[string]entities.AudioConnection)
		if s.rt != nil {
			s.rt.Clear()
		}

		for _, ns := range snap.Nodes {
			if err := s.applyAddNodeLocked(&ns); err != nil {
				s.logger.Warn("skipping node while loading graph",
					zap.String("nodeId", ns.ID),
					zap.String("nodeType", ns.NodeType),
					zap.Error(err))
			}
		}
		for _, es := range snap.Edges {
			if err := s.applyAddEdgeLocked(&es); err != nil {
				s.logger.Warn("skipping edge while loading graph",
					zap.String("edgeId", es.ID),
					zap.Error(err))
			}
		}
	})

	s.history.Clear()
	s.bumpLocked()
	return nil
}

// applyPatchLocked replays one recorded mutation verbatim. No policy
// runs here: patches already carry every side effect as an explicit
// step, so application is pure replay.
func (s *GraphStore) applyPatchLocked(p patches.Patch) {
	switch p.Kind {
	case patches.KindAddNode:
		if p.Node == nil {
			return
		}
		if err := s.applyAddNodeLocked(p.Node); err != nil {
			s.logger.Warn("failed to reapply node patch",
				zap.String("nodeId", p.Node.ID), zap.Error(err))
		}

	case patches.KindRemoveNode:
		if p.Node == nil {
			return
		}
		s.removeNodeLocked(p.Node.ID, false)

	case patches.KindSetProperty:
		if ad, ok := s.adapters[p.NodeID]; ok {
			ad.UpdateProperty(p.Name, p.After)
		}

	case patches.KindMoveNode:
		if node, ok := s.nodes[p.NodeID]; ok {
			if pos, err := valueobjects.NewPosition(p.ToX, p.ToY); err == nil {
				node.SetPosition(pos)
			}
		}

	case patches.KindAddEdge:
		if p.Edge == nil {
			return
		}
		if err := s.applyAddEdgeLocked(p.Edge); err != nil {
			s.logger.Warn("failed to reapply edge patch",
				zap.String("edgeId", p.Edge.ID), zap.Error(err))
		}

	case patches.KindRemoveEdge:
		if p.Edge == nil {
			return
		}
		s.removeEdgeLocked(p.Edge.ID, false)
	}
}

// applyAddNodeLocked reconstructs a node with its preserved id
func (s *GraphStore) applyAddNodeLocked(ns *patches.NodeSnapshot) error {
	meta, ok := s.catalog.Lookup(ns.NodeType)
	if !ok {
		return pkgerrors.NewValidation("unknown node type: " + ns.NodeType)
	}

	id, err := valueobjects.NewNodeIDFromString(ns.ID)
	if err != nil {
		return err
	}
	pos, err := valueobjects.NewPosition(ns.X, ns.Y)
	if err != nil {
		return err
	}

	node, err := entities.ReconstructGraphNode(id, meta, pos, ns.Properties)
	if err != nil {
		return err
	}
	s.attachLocked(node)
	return nil
}

// applyAddEdgeLocked reconstructs an edge with its preserved id and
// realizes its connection if the 4-tuple is not live yet
func (s *GraphStore) applyAddEdgeLocked(es *patches.EdgeSnapshot) error {
	id, err := valueobjects.NewEdgeIDFromString(es.ID)
	if err != nil {
		return err
	}
	sourceID, err := valueobjects.NewNodeIDFromString(es.SourceID)
	if err != nil {
		return err
	}
	targetID, err := valueobjects.NewNodeIDFromString(es.TargetID)
	if err != nil {
		return err
	}
	if _, ok := s.nodes[es.SourceID]; !ok {
		return pkgerrors.NewNotFound("source node not found: " + es.SourceID)
	}
	if _, ok := s.nodes[es.TargetID]; !ok {
		return pkgerrors.NewNotFound("target node not found: " + es.TargetID)
	}

	edge := &entities.GraphEdge{
		ID:           id,
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceHandle: es.SourceHandle,
		TargetHandle: es.TargetHandle,
	}
	s.edges[es.ID] = edge
	s.realizeConnectionLocked(edge)
	return nil
}
