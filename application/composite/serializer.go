package composite

import (
	"patchbay/application/services"
	"patchbay/domain/catalog"
	"patchbay/domain/core/entities"
	"patchbay/domain/patches"
	pkgerrors "patchbay/pkg/errors"

	"github.com/google/uuid"
)

// Serializer translates between a live subgraph editor store and the
// portable internal-graph form of a composite definition.
//
// In the editor, external ports are real edge-connector nodes so they
// can be wired like anything else. In the serialized form they become
// sentinel ids and the connector nodes disappear. Round-tripping
// through both representations preserves the wiring exactly.
type Serializer struct {
	catalog *catalog.Catalog
}

// NewSerializer creates a serializer over the given type catalog
func NewSerializer(c *catalog.Catalog) *Serializer {
	return &Serializer{catalog: c}
}

// Serialize captures the editor store as an internal graph. Edge
// connector nodes collapse into sentinel endpoints; the semantic
// connections list is emitted redundantly so consumers that only care
// about signal flow need not re-derive it from edges.
func (s *Serializer) Serialize(store *services.GraphStore) entities.InternalGraph {
	snap := store.Snapshot()

	sentinels := make(map[string]string)
	g := entities.InternalGraph{}

	for _, ns := range snap.Nodes {
		if ns.NodeType == catalog.TypeEdgeConnector {
			portID, _ := ns.Properties["portId"].(string)
			direction, _ := ns.Properties["direction"].(string)
			sentinels[ns.ID] = SentinelID(direction, portID)
			continue
		}
		g.Nodes = append(g.Nodes, entities.InternalNode{
			ID:         ns.ID,
			NodeType:   ns.NodeType,
			X:          ns.X,
			Y:          ns.Y,
			Properties: ns.Properties,
		})
	}

	endpoint := func(id string) string {
		if sentinel, ok := sentinels[id]; ok {
			return sentinel
		}
		return id
	}

	for _, es := range snap.Edges {
		g.Edges = append(g.Edges, entities.InternalEdge{
			ID:           es.ID,
			Source:       endpoint(es.SourceID),
			Target:       endpoint(es.TargetID),
			SourceHandle: es.SourceHandle,
			TargetHandle: es.TargetHandle,
		})
		g.Connections = append(g.Connections, entities.InternalConnection{
			Source:       endpoint(es.SourceID),
			Target:       endpoint(es.TargetID),
			SourceOutput: es.SourceHandle,
			TargetInput:  es.TargetHandle,
		})
	}
	return g
}

// Materialize populates an editor store from a definition. Sentinel
// endpoints become edge connector nodes, one per external port, placed
// by the auto-layout; internal nodes keep their stored positions when
// they have any. The store's undo history starts empty afterwards.
func (s *Serializer) Materialize(def *entities.CompositeNodeDefinition, store *services.GraphStore) error {
	g := NormalizeSentinels(def.Internal, def.Inputs, def.Outputs)
	layout := AutoLayout(g, def.Inputs, def.Outputs)

	snap := services.Snapshot{}
	idMap := make(map[string]string, len(g.Nodes))

	for _, n := range g.Nodes {
		if _, ok := s.catalog.Lookup(n.NodeType); !ok {
			return pkgerrors.NewValidation("definition references unknown node type: " + n.NodeType)
		}
		freshID := uuid.New().String()
		idMap[n.ID] = freshID

		x, y := n.X, n.Y
		if x == 0 && y == 0 {
			if p, ok := layout[n.ID]; ok {
				x, y = p.X, p.Y
			}
		}
		snap.Nodes = append(snap.Nodes, patches.NodeSnapshot{
			ID:         freshID,
			NodeType:   n.NodeType,
			X:          x,
			Y:          y,
			Properties: n.Properties,
		})
	}

	// One connector per distinct external port referenced by the wiring
	connector := func(sentinel string) (string, bool) {
		if id, ok := idMap[sentinel]; ok {
			return id, true
		}
		portID, direction, ok := ParseSentinel(sentinel, def.Inputs, def.Outputs)
		if !ok {
			return "", false
		}
		freshID := uuid.New().String()
		idMap[sentinel] = freshID

		var x, y float64
		if p, ok := layout[sentinel]; ok {
			x, y = p.X, p.Y
		}
		snap.Nodes = append(snap.Nodes, patches.NodeSnapshot{
			ID:       freshID,
			NodeType: catalog.TypeEdgeConnector,
			X:        x,
			Y:        y,
			Properties: map[string]any{
				"portId":    portID,
				"direction": direction,
			},
		})
		return freshID, true
	}

	for _, e := range g.Edges {
		sourceID, ok := idMap[e.Source]
		if !ok {
			if sourceID, ok = connector(e.Source); !ok {
				return pkgerrors.NewValidation("edge references unknown node: " + e.Source)
			}
		}
		targetID, ok := idMap[e.Target]
		if !ok {
			if targetID, ok = connector(e.Target); !ok {
				return pkgerrors.NewValidation("edge references unknown node: " + e.Target)
			}
		}
		snap.Edges = append(snap.Edges, patches.EdgeSnapshot{
			ID:           uuid.New().String(),
			SourceID:     sourceID,
			TargetID:     targetID,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}

	return store.LoadSnapshot(snap)
}
