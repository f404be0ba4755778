package clipboard

import (
	"encoding/json"

	pkgerrors "patchbay/pkg/errors"
)

// PayloadType tags clipboard content as editor nodes
const PayloadType = "patchbay-nodes"

// PayloadVersion is the current payload format version
const PayloadVersion = "1.0"

// Payload is the clipboard interchange format for a node selection:
// the selected nodes plus the edges interior to the selection
type Payload struct {
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Nodes   []PayloadNode `json:"nodes"`
	Edges   []PayloadEdge `json:"edges"`
}

// PayloadNode carries one copied node. The type tag and properties
// nest under data; top level is identity and placement.
type PayloadNode struct {
	ID   string          `json:"id"`
	X    float64         `json:"x"`
	Y    float64         `json:"y"`
	Data PayloadNodeData `json:"data"`
}

// PayloadNodeData is the nested node content
type PayloadNodeData struct {
	NodeType   string         `json:"nodeType"`
	Properties map[string]any `json:"properties,omitempty"`
}

// PayloadEdge carries one interior edge with endpoint ids that refer
// into the payload's node list
type PayloadEdge struct {
	ID           string `json:"id"`
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// UnmarshalJSON accepts both the nested current format and the legacy
// flat format that put nodeType and properties at the top level
func (n *PayloadNode) UnmarshalJSON(data []byte) error {
	type current PayloadNode
	var c current
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*n = PayloadNode(c)
	if n.Data.NodeType != "" {
		return nil
	}

	var legacy struct {
		NodeType   string         `json:"nodeType"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	n.Data.NodeType = legacy.NodeType
	if n.Data.Properties == nil {
		n.Data.Properties = legacy.Properties
	}
	return nil
}

// Encode serializes a payload for the system clipboard
func Encode(p Payload) (string, error) {
	p.Type = PayloadType
	p.Version = PayloadVersion
	out, err := json.Marshal(p)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode clipboard payload")
	}
	return string(out), nil
}

// Decode parses clipboard text into a payload. Text that is not a
// recognizable node payload returns a validation error so callers can
// ignore foreign clipboard content.
func Decode(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return Payload{}, pkgerrors.NewValidation("clipboard content is not a node payload")
	}
	if p.Type != PayloadType {
		return Payload{}, pkgerrors.NewValidation("clipboard content is not a node payload")
	}
	if len(p.Nodes) == 0 {
		return Payload{}, pkgerrors.NewValidation("clipboard payload has no nodes")
	}
	return p, nil
}
