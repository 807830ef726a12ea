// Package graph holds the persistent node/edge model for a monitored
// session and the layered layout used to draw it. Merging a snapshot and
// rendering are two explicit steps: the model can be asserted in tests
// without any rendering backend.
package graph

import (
	"sort"

	"github.com/rclarkson/dropwatch/internal/feed"
)

// Node is one drop in the graph model.
type Node struct {
	OID    string
	UID    string
	Status string
}

// Edge is one producer→consumer relation.
type Edge struct {
	Src string
	Dst string
}

// Graph is the persistent model owned by the graph view. The node/edge set
// is always a function of the most recent snapshot: nothing removed from a
// snapshot survives the next Merge.
type Graph struct {
	nodes map[string]*Node
	edges map[Edge]struct{}
	order []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[Edge]struct{}),
	}
}

// Merge folds a snapshot into the model: new drops become nodes, known drops
// get their status updated, and drops (or relations) absent from the
// snapshot are removed. An empty snapshot empties the graph. Merge does not
// render; layout and drawing happen separately.
func (g *Graph) Merge(snap feed.Snapshot) {
	// Live drops are the ordered ids that also carry a drop entry. A drop map
	// entry missing from the ordered sequence is treated as absent, so it can
	// never survive as a ghost node.
	live := make(map[string]bool, len(snap.OrderedIDs))
	for _, oid := range snap.OrderedIDs {
		drop, ok := snap.Drops[oid]
		if !ok {
			continue
		}
		live[oid] = true
		node, exists := g.nodes[oid]
		if !exists {
			g.nodes[oid] = &Node{OID: oid, UID: drop.UID, Status: drop.Status}
			continue
		}
		if node.Status != drop.Status {
			node.Status = drop.Status
		}
		node.UID = drop.UID
	}

	// Drop nodes no longer present. Incident edges disappear below because
	// the desired edge set only references surviving drops.
	for oid := range g.nodes {
		if !live[oid] {
			delete(g.nodes, oid)
		}
	}

	desired := desiredEdges(snap, live)
	for e := range g.edges {
		if _, ok := desired[e]; !ok {
			delete(g.edges, e)
		}
	}
	for e := range desired {
		g.edges[e] = struct{}{}
	}

	g.order = g.order[:0]
	for _, oid := range snap.OrderedIDs {
		if _, ok := g.nodes[oid]; ok {
			g.order = append(g.order, oid)
		}
	}
}

// desiredEdges derives the edge set declared by a snapshot. Relations naming
// drops outside the live set are skipped rather than failing the merge.
func desiredEdges(snap feed.Snapshot, live map[string]bool) map[Edge]struct{} {
	edges := make(map[Edge]struct{})
	add := func(src, dst string) {
		if src == dst || !live[src] || !live[dst] {
			return
		}
		edges[Edge{Src: src, Dst: dst}] = struct{}{}
	}
	for oid := range live {
		drop := snap.Drops[oid]
		for _, dst := range drop.Downstream {
			add(drop.OID, dst)
		}
		for _, src := range drop.Upstream {
			add(src, drop.OID)
		}
	}
	return edges
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node for an oid, or nil.
func (g *Graph) Node(oid string) *Node {
	return g.nodes[oid]
}

// Order returns the snapshot-stable node order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Nodes returns copies of all nodes in snapshot order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, oid := range g.order {
		if n, ok := g.nodes[oid]; ok {
			out = append(out, *n)
		}
	}
	return out
}

// Edges returns all edges sorted by (src, dst) for deterministic iteration.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}

// StatusCounts tallies nodes per status label.
func (g *Graph) StatusCounts() map[string]int {
	counts := make(map[string]int, 4)
	for _, n := range g.nodes {
		counts[n.Status]++
	}
	return counts
}
