package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rclarkson/dropwatch/internal/feed"
	"github.com/rclarkson/dropwatch/internal/graph"
)

// GraphView renders the session as a layered directed graph. It owns the
// graph model exclusively; merges mutate the model on the event loop while
// layout runs as a command over value copies.
type GraphView struct {
	model       *graph.Graph
	layout      *graph.Layout
	orientation graph.Orientation

	// layoutSeq discards layout results superseded by a newer merge or
	// orientation change. relayouting disables the orientation controls
	// until the requested relayout lands.
	layoutSeq   int
	relayouting bool

	viewport viewport.Model
	torn     bool
}

// NewGraphView creates a graph renderer with the given initial orientation.
func NewGraphView(o graph.Orientation) *GraphView {
	return &GraphView{
		model:       graph.New(),
		orientation: o,
		viewport:    viewport.New(0, 0),
	}
}

// Orientation returns the active layout direction.
func (v *GraphView) Orientation() graph.Orientation {
	return v.orientation
}

// Relayouting reports whether an orientation change is still being applied.
// The monitor renders the orientation controls disabled while true.
func (v *GraphView) Relayouting() bool {
	return v.relayouting
}

// Model exposes the underlying graph for assertions; the monitor never
// mutates it.
func (v *GraphView) Model() *graph.Graph {
	return v.model
}

// Merge folds a snapshot into the graph model and schedules a relayout.
func (v *GraphView) Merge(snap feed.Snapshot) tea.Cmd {
	if v.torn {
		return nil
	}
	v.model.Merge(snap)
	return v.relayout()
}

// ToggleOrientation flips the layout direction and schedules a relayout.
// Requests made while a relayout is in flight are ignored; the node/edge set
// is never touched, only the direction parameter.
func (v *GraphView) ToggleOrientation() tea.Cmd {
	if v.torn || v.relayouting {
		return nil
	}
	v.relayouting = true
	v.orientation = v.orientation.Toggle()
	return v.relayout()
}

// relayout snapshots the model into value copies and computes the layout off
// the event loop. Only the newest requested layout is ever applied.
func (v *GraphView) relayout() tea.Cmd {
	v.layoutSeq++
	seq := v.layoutSeq
	nodes := v.model.Nodes()
	edges := v.model.Edges()
	o := v.orientation
	return func() tea.Msg {
		return layoutMsg{seq: seq, layout: graph.Compute(nodes, edges, o)}
	}
}

// Update handles layout completions and scroll keys.
func (v *GraphView) Update(msg tea.Msg) tea.Cmd {
	if v.torn {
		return nil
	}
	switch msg := msg.(type) {
	case layoutMsg:
		if msg.seq != v.layoutSeq {
			return nil // superseded
		}
		v.layout = msg.layout
		v.relayouting = false
		v.viewport.SetContent(graph.Render(v.layout, StatusStyle))
		return nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// SetSize resizes the scroll viewport.
func (v *GraphView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
}

// View draws the last computed layout.
func (v *GraphView) View() string {
	if v.torn {
		return ""
	}
	if v.layout == nil {
		return DimStyle.Render("computing layout…")
	}
	return v.viewport.View()
}

// Teardown releases the renderer. Layout results that arrive afterwards are
// dropped by the torn flag.
func (v *GraphView) Teardown() {
	v.torn = true
	v.layout = nil
}
