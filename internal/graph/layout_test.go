package graph

import (
	"reflect"
	"testing"

	"github.com/rclarkson/dropwatch/internal/feed"
)

func chainGraph() *Graph {
	g := New()
	g.Merge(snapshot(
		feed.Drop{OID: "A", Downstream: []string{"B"}},
		feed.Drop{OID: "B", Downstream: []string{"C"}},
		feed.Drop{OID: "C"},
	))
	return g
}

func layerOIDs(l *Layout) [][]string {
	out := make([][]string, len(l.Layers))
	for i, layer := range l.Layers {
		for _, n := range layer {
			out[i] = append(out[i], n.OID)
		}
	}
	return out
}

func TestComputeLongestPathLayering(t *testing.T) {
	g := chainGraph()
	l := Compute(g.Nodes(), g.Edges(), LR)

	want := [][]string{{"A"}, {"B"}, {"C"}}
	if got := layerOIDs(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
}

func TestComputeDiamondLayering(t *testing.T) {
	g := New()
	g.Merge(snapshot(
		feed.Drop{OID: "A", Downstream: []string{"B", "C"}},
		feed.Drop{OID: "B", Downstream: []string{"D"}},
		feed.Drop{OID: "C", Downstream: []string{"D"}},
		feed.Drop{OID: "D"},
	))
	l := Compute(g.Nodes(), g.Edges(), TB)

	want := [][]string{{"A"}, {"B", "C"}, {"D"}}
	if got := layerOIDs(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
}

func TestOrientationChangeKeepsNodeAndEdgeSet(t *testing.T) {
	g := chainGraph()
	nodesBefore := g.Nodes()
	edgesBefore := g.Edges()

	lr := Compute(g.Nodes(), g.Edges(), LR)
	tb := Compute(g.Nodes(), g.Edges(), TB)

	if lr.Orientation != LR || tb.Orientation != TB {
		t.Fatal("orientation not carried into layout")
	}
	if !reflect.DeepEqual(layerOIDs(lr), layerOIDs(tb)) {
		t.Errorf("layer assignment changed with orientation: %v vs %v", layerOIDs(lr), layerOIDs(tb))
	}
	if !reflect.DeepEqual(lr.Edges, tb.Edges) {
		t.Errorf("edge set changed with orientation")
	}

	// The model itself is untouched by layout.
	if !reflect.DeepEqual(g.Nodes(), nodesBefore) || !reflect.DeepEqual(g.Edges(), edgesBefore) {
		t.Error("Compute mutated the graph model")
	}
}

func TestComputeSurvivesCycles(t *testing.T) {
	g := New()
	g.Merge(snapshot(
		feed.Drop{OID: "A", Downstream: []string{"B"}},
		feed.Drop{OID: "B", Downstream: []string{"A"}},
	))
	l := Compute(g.Nodes(), g.Edges(), LR)

	total := 0
	for _, layer := range l.Layers {
		total += len(layer)
	}
	if total != 2 {
		t.Fatalf("expected both nodes placed despite the cycle, got %v", layerOIDs(l))
	}
}

func TestComputeEmptyGraph(t *testing.T) {
	l := Compute(nil, nil, LR)
	if len(l.Layers) != 0 {
		t.Fatalf("expected no layers, got %v", l.Layers)
	}
}
