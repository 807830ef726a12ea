package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rclarkson/dropwatch/internal/feed"
	"github.com/rclarkson/dropwatch/internal/graph"
)

// Mode selects the active visualization.
type Mode string

const (
	ModeGraph Mode = "graph"
	ModeList  Mode = "list"
)

// ParseMode returns the mode for s, falling back to graph for anything
// unsupported.
func ParseMode(s string) Mode {
	if Mode(s) == ModeList {
		return ModeList
	}
	return ModeGraph
}

// errTTL is how long a transient feed error stays in the footer.
const errTTL = 6 * time.Second

// SourceFactory builds a snapshot source wired to the given callback. The
// monitor calls it once per renderer start, so every view-mode switch gets a
// fresh feed for the same session and selected drop.
type SourceFactory func(onSnapshot feed.SnapshotFunc) (feed.Source, error)

// Options configures a Monitor.
type Options struct {
	SessionID   string
	RootOID     string
	Mode        Mode
	Orientation graph.Orientation
	MakeSource  SourceFactory
	Logger      *log.Logger
}

// Monitor is the top-level bubbletea model: it owns the view-mode state
// machine, the feed lifecycle, and the footer chrome. Exactly one renderer
// and at most one feed are alive at any time.
type Monitor struct {
	sessionID   string
	rootOID     string
	mode        Mode
	orientation graph.Orientation

	makeSource SourceFactory
	source     feed.Source
	snaps      chan feed.Snapshot
	stopCh     chan struct{}
	feedGen    int

	renderer Renderer

	width, height int
	gotSnapshot   bool
	counts        map[string]int
	lastUpdate    time.Time

	spin spinner.Model
	help help.Model
	keys keyMap

	err     error
	errTime time.Time

	logger *log.Logger
}

// NewMonitor creates a Monitor. opts.SessionID must be non-empty: without a
// session there is nothing to poll and nothing to render.
func NewMonitor(opts Options) (*Monitor, error) {
	if opts.SessionID == "" {
		return nil, feed.ErrNoSession
	}
	if opts.MakeSource == nil {
		return nil, fmt.Errorf("monitor: nil source factory")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorBlue)

	m := &Monitor{
		sessionID:   opts.SessionID,
		rootOID:     opts.RootOID,
		mode:        opts.Mode,
		orientation: opts.Orientation,
		makeSource:  opts.MakeSource,
		counts:      map[string]int{},
		spin:        sp,
		help:        help.New(),
		keys:        defaultKeyMap(),
		logger:      logger,
	}
	if m.mode == "" {
		m.mode = ModeGraph
	}
	if m.orientation == "" {
		m.orientation = graph.LR
	}
	m.renderer = m.buildRenderer(m.mode)
	return m, nil
}

func (m *Monitor) buildRenderer(mode Mode) Renderer {
	if mode == ModeList {
		return NewListView()
	}
	return NewGraphView(m.orientation)
}

// Init starts the spinner and the first feed.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startFeed())
}

// startFeed builds a fresh source for the current generation and begins
// listening for its snapshots.
func (m *Monitor) startFeed() tea.Cmd {
	gen := m.feedGen
	ch := make(chan feed.Snapshot)
	stop := make(chan struct{})
	m.snaps = ch
	m.stopCh = stop

	src, err := m.makeSource(func(s feed.Snapshot) {
		// Blocking hand-off keeps snapshots strictly ordered; the stop
		// channel lets a cancelled feed shed an undelivered snapshot.
		select {
		case ch <- s:
		case <-stop:
		}
	})
	if err != nil {
		return func() tea.Msg { return feedErrMsg{gen: gen, err: err} }
	}
	if err := src.Start(context.Background()); err != nil {
		return func() tea.Msg { return feedErrMsg{gen: gen, err: err} }
	}
	m.source = src
	return waitForSnapshot(ch, stop, gen)
}

// stopFeed cancels the active feed. The generation bump makes any message
// still in flight from the old feed a no-op.
func (m *Monitor) stopFeed() {
	m.feedGen++
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	if m.source != nil {
		src := m.source
		m.source = nil
		go src.Stop()
	}
}

// waitForSnapshot blocks on the feed channel and re-arms after every
// delivery, the same way the teacher listens for storage reloads.
func waitForSnapshot(ch <-chan feed.Snapshot, stop <-chan struct{}, gen int) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-ch:
			return snapshotMsg{gen: gen, snap: snap}
		case <-stop:
			return nil
		}
	}
}

// switchMode is the view-mode state machine transition: tear down the active
// renderer and its feed, then start the other renderer with the same session
// id and selected drop. Switching to the active mode is a no-op.
func (m *Monitor) switchMode(target Mode) tea.Cmd {
	if target == m.mode {
		return nil
	}
	if gv, ok := m.renderer.(*GraphView); ok {
		m.orientation = gv.Orientation() // preserved across switches
	}
	m.stopFeed()
	m.renderer.Teardown()

	m.mode = target
	m.renderer = m.buildRenderer(target)
	m.gotSnapshot = false
	m.counts = map[string]int{}
	return m.startFeed()
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.renderer.SetSize(msg.Width, m.bodyHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		if msg.gen != m.feedGen {
			return m, nil // stale feed, renderer already torn down
		}
		m.gotSnapshot = true
		m.lastUpdate = time.Now()
		m.counts = countStatuses(msg.snap)
		cmd := m.renderer.Merge(msg.snap)
		return m, tea.Batch(cmd, waitForSnapshot(m.snaps, m.stopCh, m.feedGen))

	case feedErrMsg:
		if msg.gen != m.feedGen {
			return m, nil
		}
		m.logger.Printf("monitor: feed for session %s: %v", m.sessionID, msg.err)
		m.setError(msg.err)
		return m, nil

	case layoutMsg, fadeTickMsg:
		return m, m.renderer.Update(msg)

	case spinner.TickMsg:
		if m.gotSnapshot {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, m.renderer.Update(msg)
}

func (m *Monitor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The list filter captures everything while focused.
	if lv, ok := m.renderer.(*ListView); ok && lv.Filtering() {
		return m, m.renderer.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopFeed()
		m.renderer.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Graph):
		return m, m.switchMode(ModeGraph)

	case key.Matches(msg, m.keys.List):
		return m, m.switchMode(ModeList)

	case key.Matches(msg, m.keys.ToggleMode):
		if m.mode == ModeGraph {
			return m, m.switchMode(ModeList)
		}
		return m, m.switchMode(ModeGraph)

	case key.Matches(msg, m.keys.Orientation):
		if gv, ok := m.renderer.(*GraphView); ok {
			cmd := gv.ToggleOrientation()
			if cmd != nil {
				m.orientation = gv.Orientation()
			}
			return m, cmd
		}
		return m, nil
	}

	return m, m.renderer.Update(msg)
}

func (m *Monitor) setError(err error) {
	m.err = err
	m.errTime = time.Now()
}

func countStatuses(snap feed.Snapshot) map[string]int {
	counts := make(map[string]int, 4)
	for _, d := range snap.Drops {
		counts[d.Status]++
	}
	return counts
}

const chromeHeight = 4 // header + blank + footer counts + help

func (m *Monitor) bodyHeight() int {
	h := m.height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

// Mode returns the active view mode.
func (m *Monitor) Mode() Mode {
	return m.mode
}

// ActiveRenderer returns the live renderer.
func (m *Monitor) ActiveRenderer() Renderer {
	return m.renderer
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if !m.gotSnapshot {
		b.WriteString(m.spin.View() + DimStyle.Render(" waiting for first snapshot…"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderer.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader draws the title and the two mutually-exclusive toggle groups:
// view mode, and (in graph mode) orientation.
func (m *Monitor) renderHeader() string {
	title := TitleStyle.Render("dropwatch")
	session := DimStyle.Render(" session=" + m.sessionID)
	root := ""
	if m.rootOID != "" {
		root = DimStyle.Render(" root=" + m.rootOID)
	}

	modeGroup := badge("GRAPH", m.mode == ModeGraph, false) + badge("LIST", m.mode == ModeList, false)

	orientGroup := ""
	if gv, ok := m.renderer.(*GraphView); ok {
		disabled := gv.Relayouting()
		orientGroup = " " +
			badge("LR", gv.Orientation() == graph.LR, disabled) +
			badge("TB", gv.Orientation() == graph.TB, disabled)
	}

	return title + session + root + "  " + modeGroup + orientGroup
}

func badge(label string, active, disabled bool) string {
	switch {
	case disabled:
		return disabledBadgeStyle.Render(label)
	case active:
		return activeBadgeStyle.Render(label)
	default:
		return inactiveBadgeStyle.Render(label)
	}
}

// renderFooter draws status counts, any recent feed error, and key help.
func (m *Monitor) renderFooter() string {
	var parts []string
	for _, status := range []string{"initialized", "pending", "writing", "running", "completed", "error", "cancelled"} {
		if n := m.counts[status]; n > 0 {
			parts = append(parts, StatusStyle(status).Render(fmt.Sprintf("%d %s", n, status)))
		}
	}
	counts := strings.Join(parts, DimStyle.Render(" · "))
	if counts == "" && m.gotSnapshot {
		counts = DimStyle.Render("0 drops")
	}

	errLine := ""
	if m.err != nil && time.Since(m.errTime) < errTTL {
		errLine = " " + ErrorStyle.Render("⚠ "+m.err.Error())
	}

	return counts + errLine + "\n" + m.help.View(m.keys)
}
