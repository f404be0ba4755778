package composite

import (
	"sort"

	"patchbay/domain/core/entities"
)

// Point is a computed canvas position
type Point struct {
	X float64
	Y float64
}

const (
	layoutColumnWidth = 200.0
	layoutRowHeight   = 110.0
	layoutOriginX     = 80.0
	layoutCenterY     = 300.0
)

// AutoLayout assigns canvas positions to the ids of an internal graph:
// input sentinels in the leftmost column, each internal node one
// column right of its furthest predecessor, output sentinels in the
// rightmost column. Columns are centered vertically. Used for sentinel
// connectors and for legacy definitions saved without positions.
func AutoLayout(g entities.InternalGraph, inputs, outputs []entities.CompositePort) map[string]Point {
	layers := make(map[string]int)

	for _, p := range inputs {
		layers[SentinelID("input", p.ID)] = 0
	}
	for _, n := range g.Nodes {
		layers[n.ID] = 1
	}

	// Relax until stable; the iteration cap keeps cycles from spinning
	for i := 0; i < len(g.Nodes)+2; i++ {
		changed := false
		for _, e := range g.Edges {
			sourceLayer, ok := layers[e.Source]
			if !ok {
				continue
			}
			// Output sentinels are not in the map yet; they get pinned
			// to the rightmost column below
			if targetLayer, ok := layers[e.Target]; ok && sourceLayer+1 > targetLayer {
				layers[e.Target] = sourceLayer + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}
	for _, p := range outputs {
		layers[SentinelID("output", p.ID)] = maxLayer + 1
	}

	// Group ids per column, sorted for deterministic placement
	columns := make(map[int][]string)
	for id, l := range layers {
		columns[l] = append(columns[l], id)
	}

	points := make(map[string]Point, len(layers))
	for layer, ids := range columns {
		sort.Strings(ids)
		for i, id := range ids {
			offset := float64(i) - float64(len(ids)-1)/2
			points[id] = Point{
				X: layoutOriginX + float64(layer)*layoutColumnWidth,
				Y: layoutCenterY + offset*layoutRowHeight,
			}
		}
	}
	return points
}
