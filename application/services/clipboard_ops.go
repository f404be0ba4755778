package services

import (
	"patchbay/application/clipboard"
	"patchbay/domain/core/valueobjects"

	"go.uber.org/zap"
)

// GraphStore implements clipboard.GraphContext so the main canvas and
// subgraph editors share one copy-paste implementation.

// CopySelection builds a clipboard payload from the selected nodes.
// Edges crossing the selection boundary are dropped; only edges with
// both endpoints selected are copied.
func (s *GraphStore) CopySelection(ids []string) (clipboard.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make(map[string]bool, len(ids))
	payload := clipboard.Payload{
		Type:    clipboard.PayloadType,
		Version: clipboard.PayloadVersion,
	}

	for _, id := range ids {
		node, ok := s.nodes[id]
		if !ok {
			continue
		}
		selected[id] = true
		payload.Nodes = append(payload.Nodes, clipboard.PayloadNode{
			ID: id,
			X:  node.Position().X(),
			Y:  node.Position().Y(),
			Data: clipboard.PayloadNodeData{
				NodeType:   node.NodeType(),
				Properties: node.Properties(),
			},
		})
	}
	if len(payload.Nodes) == 0 {
		return clipboard.Payload{}, false
	}

	for _, edge := range s.edges {
		if !selected[edge.SourceID.String()] || !selected[edge.TargetID.String()] {
			continue
		}
		payload.Edges = append(payload.Edges, clipboard.PayloadEdge{
			ID:           edge.ID.String(),
			SourceID:     edge.SourceID.String(),
			TargetID:     edge.TargetID.String(),
			SourceHandle: edge.SourceHandle,
			TargetHandle: edge.TargetHandle,
		})
	}
	return payload, true
}

// PasteNodes materializes a payload as one undo step. Every pasted
// node gets a fresh id; edge endpoints are remapped onto the new ids.
// Nodes with unknown types are skipped, along with any edge touching
// them. Pasting the same payload repeatedly keeps producing fresh
// nodes at the same offset position.
func (s *GraphStore) PasteNodes(p clipboard.Payload) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Begin("paste")
	defer s.history.Commit()

	idMap := make(map[string]valueobjects.NodeID, len(p.Nodes))
	newIDs := make([]string, 0, len(p.Nodes))

	for _, pn := range p.Nodes {
		id, err := s.addNodeLocked(
			pn.Data.NodeType,
			pn.X+s.cfg.PasteOffsetX,
			pn.Y+s.cfg.PasteOffsetY,
			pn.Data.Properties,
		)
		if err != nil {
			s.logger.Warn("skipping pasted node",
				zap.String("nodeType", pn.Data.NodeType),
				zap.Error(err))
			continue
		}
		idMap[pn.ID] = id
		newIDs = append(newIDs, id.String())
	}

	for _, pe := range p.Edges {
		sourceID, ok := idMap[pe.SourceID]
		if !ok {
			continue
		}
		targetID, ok := idMap[pe.TargetID]
		if !ok {
			continue
		}
		if _, err := s.addEdgeLocked(sourceID, targetID, pe.SourceHandle, pe.TargetHandle); err != nil {
			s.logger.Warn("skipping pasted edge", zap.Error(err))
		}
	}
	return newIDs
}

// DeleteNodes removes the given nodes and their edges as one undo step
func (s *GraphStore) DeleteNodes(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Begin("delete selection")
	defer s.history.Commit()

	for _, id := range ids {
		s.removeNodeLocked(id, true)
	}
}
