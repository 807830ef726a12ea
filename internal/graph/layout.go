package graph

// Orientation is the layout direction: left-to-right or top-to-bottom.
type Orientation string

const (
	LR Orientation = "LR"
	TB Orientation = "TB"
)

// ParseOrientation returns the orientation for s, defaulting to LR for
// unknown values.
func ParseOrientation(s string) Orientation {
	if Orientation(s) == TB {
		return TB
	}
	return LR
}

// Toggle returns the other orientation.
func (o Orientation) Toggle() Orientation {
	if o == LR {
		return TB
	}
	return LR
}

// Layout is the computed arrangement of one node/edge set in one direction.
// Nodes sit in layers; in LR a layer is a column, in TB a row. A Layout is
// immutable once computed.
type Layout struct {
	Orientation Orientation
	Layers      [][]Node
	Edges       []Edge
}

// Compute assigns every node to a layer via longest-path layering: sources
// sit in layer 0, every other node one past its furthest upstream. Within a
// layer nodes keep snapshot order, which keeps successive layouts stable
// between polls. The inputs are value copies, so Compute is safe to run off
// the event loop while the model keeps merging.
func Compute(nodes []Node, edges []Edge, o Orientation) *Layout {
	present := make(map[string]int, len(nodes))
	for i, n := range nodes {
		present[n.OID] = i
	}

	upstream := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if _, ok := present[e.Src]; !ok {
			continue
		}
		if _, ok := present[e.Dst]; !ok {
			continue
		}
		upstream[e.Dst] = append(upstream[e.Dst], e.Src)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	layer := make(map[string]int, len(nodes))

	var assign func(oid string) int
	assign = func(oid string) int {
		switch state[oid] {
		case done:
			return layer[oid]
		case visiting:
			// Cycle in the declared relations; break it at layer 0 rather
			// than recursing forever.
			return 0
		}
		state[oid] = visiting
		max := -1
		for _, up := range upstream[oid] {
			if l := assign(up); l > max {
				max = l
			}
		}
		state[oid] = done
		layer[oid] = max + 1
		return max + 1
	}

	depth := 0
	for _, n := range nodes {
		if l := assign(n.OID); l > depth {
			depth = l
		}
	}

	layers := make([][]Node, depth+1)
	for _, n := range nodes { // snapshot order within each layer
		l := layer[n.OID]
		layers[l] = append(layers[l], n)
	}
	if len(nodes) == 0 {
		layers = nil
	}

	kept := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := present[e.Src]; !ok {
			continue
		}
		if _, ok := present[e.Dst]; !ok {
			continue
		}
		kept = append(kept, e)
	}

	return &Layout{Orientation: o, Layers: layers, Edges: kept}
}
