package composite

import (
	"strings"

	"patchbay/domain/core/entities"
)

// External ports appear inside a serialized internal graph as sentinel
// node ids rather than real nodes. The current format encodes the
// direction in the prefix; the legacy format used a bare "ext_" prefix
// and left the direction to be recovered from the port lists.
const (
	SentinelInputPrefix  = "ext_input_"
	SentinelOutputPrefix = "ext_output_"

	legacySentinelPrefix = "ext_"
)

// SentinelID builds the sentinel node id for an external port
func SentinelID(direction, portID string) string {
	if direction == "input" {
		return SentinelInputPrefix + portID
	}
	return SentinelOutputPrefix + portID
}

// ParseSentinel resolves a node id that may be a sentinel, returning
// the port id and direction. Legacy bare-prefix sentinels are resolved
// against the definition's port lists; an id matching neither list is
// not a sentinel.
func ParseSentinel(id string, inputs, outputs []entities.CompositePort) (portID, direction string, ok bool) {
	switch {
	case strings.HasPrefix(id, SentinelInputPrefix):
		return strings.TrimPrefix(id, SentinelInputPrefix), "input", true
	case strings.HasPrefix(id, SentinelOutputPrefix):
		return strings.TrimPrefix(id, SentinelOutputPrefix), "output", true
	case strings.HasPrefix(id, legacySentinelPrefix):
		portID = strings.TrimPrefix(id, legacySentinelPrefix)
		for _, p := range inputs {
			if p.ID == portID {
				return portID, "input", true
			}
		}
		for _, p := range outputs {
			if p.ID == portID {
				return portID, "output", true
			}
		}
	}
	return "", "", false
}

// NormalizeSentinels rewrites legacy sentinel ids in an internal graph
// to the direction-prefixed form
func NormalizeSentinels(g entities.InternalGraph, inputs, outputs []entities.CompositePort) entities.InternalGraph {
	normalize := func(id string) string {
		if portID, direction, ok := ParseSentinel(id, inputs, outputs); ok {
			return SentinelID(direction, portID)
		}
		return id
	}

	out := g.Clone()
	for i := range out.Edges {
		out.Edges[i].Source = normalize(out.Edges[i].Source)
		out.Edges[i].Target = normalize(out.Edges[i].Target)
	}
	for i := range out.Connections {
		out.Connections[i].Source = normalize(out.Connections[i].Source)
		out.Connections[i].Target = normalize(out.Connections[i].Target)
	}
	return out
}
