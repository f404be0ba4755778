package patches

// Kind tags the low-level mutation a patch describes
type Kind string

const (
	KindAddNode     Kind = "add_node"
	KindRemoveNode  Kind = "remove_node"
	KindMoveNode    Kind = "move_node"
	KindSetProperty Kind = "set_property"
	KindAddEdge     Kind = "add_edge"
	KindRemoveEdge  Kind = "remove_edge"
)

// NodeSnapshot captures everything needed to recreate a node with its
// original id
type NodeSnapshot struct {
	ID         string
	NodeType   string
	X          float64
	Y          float64
	Properties map[string]any
}

// Clone deep-copies the snapshot
func (s NodeSnapshot) Clone() NodeSnapshot {
	out := s
	if s.Properties != nil {
		out.Properties = make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = v
		}
	}
	return out
}

// EdgeSnapshot captures everything needed to recreate an edge with its
// original id
type EdgeSnapshot struct {
	ID           string
	SourceID     string
	TargetID     string
	SourceHandle string
	TargetHandle string
}

// Patch is a plain-data record of one low-level mutation
// Only the fields relevant to its Kind are set
type Patch struct {
	Kind Kind

	// Node is set for add/remove node patches
	Node *NodeSnapshot

	// Edge is set for add/remove edge patches
	Edge *EdgeSnapshot

	// NodeID, Name, Before and After are set for property patches
	NodeID string
	Name   string
	Before any
	After  any

	// FromX/FromY/ToX/ToY are set for move patches
	FromX, FromY float64
	ToX, ToY     float64
}

// Invert returns the patch that undoes this one
func (p Patch) Invert() Patch {
	switch p.Kind {
	case KindAddNode:
		return Patch{Kind: KindRemoveNode, Node: p.Node}
	case KindRemoveNode:
		return Patch{Kind: KindAddNode, Node: p.Node}
	case KindAddEdge:
		return Patch{Kind: KindRemoveEdge, Edge: p.Edge}
	case KindRemoveEdge:
		return Patch{Kind: KindAddEdge, Edge: p.Edge}
	case KindSetProperty:
		return Patch{
			Kind:   KindSetProperty,
			NodeID: p.NodeID,
			Name:   p.Name,
			Before: p.After,
			After:  p.Before,
		}
	case KindMoveNode:
		return Patch{
			Kind:   KindMoveNode,
			NodeID: p.NodeID,
			FromX:  p.ToX,
			FromY:  p.ToY,
			ToX:    p.FromX,
			ToY:    p.FromY,
		}
	}
	return p
}

// Transaction is an atomic multi-step undo unit: an ordered forward
// patch list whose inverse is the reverse-ordered list of inverses
type Transaction struct {
	Label   string
	Forward []Patch
}

// Inverse returns the patches that undo the transaction, in application order
func (t Transaction) Inverse() []Patch {
	out := make([]Patch, 0, len(t.Forward))
	for i := len(t.Forward) - 1; i >= 0; i-- {
		out = append(out, t.Forward[i].Invert())
	}
	return out
}

// IsEmpty reports whether the transaction recorded no mutations
func (t Transaction) IsEmpty() bool {
	return len(t.Forward) == 0
}
