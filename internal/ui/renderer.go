package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rclarkson/dropwatch/internal/feed"
	"github.com/rclarkson/dropwatch/internal/graph"
)

// Renderer is one way of visualizing a session: the graph view or the list
// view. The monitor owns exactly one at a time; on a view-mode switch the
// active renderer is torn down and a fresh one is started with a fresh feed.
type Renderer interface {
	// Merge folds a snapshot into the renderer's model and returns any
	// follow-up command (relayout, fade animation). Merging never draws.
	Merge(snap feed.Snapshot) tea.Cmd

	// Update handles renderer-specific messages and keys.
	Update(msg tea.Msg) tea.Cmd

	// SetSize informs the renderer of its drawable area.
	SetSize(width, height int)

	// View draws the current model state.
	View() string

	// Teardown releases the renderer; it must not be used afterwards.
	Teardown()
}

// Messages shared between the monitor and its renderers.

// snapshotMsg carries one feed snapshot. gen identifies the feed that
// produced it; snapshots from a stopped feed are discarded.
type snapshotMsg struct {
	gen  int
	snap feed.Snapshot
}

// feedErrMsg reports a feed that could not be started.
type feedErrMsg struct {
	gen int
	err error
}

// layoutMsg delivers an asynchronously computed graph layout. seq discards
// results that were superseded by a newer merge or orientation change.
type layoutMsg struct {
	seq    int
	layout *graph.Layout
}

// fadeTickMsg advances the list view's enter/exit fade animation.
type fadeTickMsg struct{}
