package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/rclarkson/dropwatch/internal/feed"
)

const (
	fadeFrames   = 3
	fadeInterval = 120 * time.Millisecond

	colOIDWidth    = 28
	colUIDWidth    = 28
	colStatusWidth = 14
)

type rowPhase int

const (
	rowSteady rowPhase = iota
	rowEntering
	rowExiting
)

// row is one visible drop in the list. Identity is the oid, never the
// position, so mid-list insertions and removals leave other rows alone.
type row struct {
	oid    string
	uid    string
	status string
	phase  rowPhase
	frame  int
}

// ListView renders the session as an ordered table of drops. Row order
// always equals the snapshot's ordered id sequence; entering rows fade in
// and removed rows fade out before they disappear.
type ListView struct {
	rows []*row
	byID map[string]*row

	filter    textinput.Model
	filtering bool

	viewport viewport.Model
	fading   bool
	torn     bool
}

// NewListView creates an empty list renderer.
func NewListView() *ListView {
	ti := textinput.New()
	ti.Placeholder = "filter drops"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return &ListView{
		byID:     make(map[string]*row),
		filter:   ti,
		viewport: viewport.New(0, 0),
	}
}

// Filtering reports whether the filter input currently captures keys.
func (v *ListView) Filtering() bool {
	return v.filtering
}

// Order returns the oids of live (non-exiting) rows in display order.
func (v *ListView) Order() []string {
	out := make([]string, 0, len(v.rows))
	for _, r := range v.rows {
		if r.phase != rowExiting {
			out = append(out, r.oid)
		}
	}
	return out
}

// Row returns the live row for an oid, or nil.
func (v *ListView) Row(oid string) *row {
	r := v.byID[oid]
	if r == nil || r.phase == rowExiting {
		return nil
	}
	return r
}

// Merge reconciles the row set against a snapshot: new ids enter with a
// fade-in, vanished ids exit with a fade-out, and surviving rows update
// their three fields unconditionally.
func (v *ListView) Merge(snap feed.Snapshot) tea.Cmd {
	if v.torn {
		return nil
	}

	oldIndex := make(map[string]int, len(v.rows))
	for i, r := range v.rows {
		oldIndex[r.oid] = i
	}

	next := make([]*row, 0, len(snap.OrderedIDs))
	seen := make(map[string]bool, len(snap.OrderedIDs))
	for _, oid := range snap.OrderedIDs {
		drop, ok := snap.Drops[oid]
		if !ok || seen[oid] {
			continue
		}
		seen[oid] = true

		if r, exists := v.byID[oid]; exists {
			r.uid = drop.UID
			r.status = drop.Status
			if r.phase == rowExiting {
				// Came back before the fade-out finished.
				r.phase = rowEntering
				r.frame = 0
			}
			next = append(next, r)
			continue
		}
		r := &row{oid: oid, uid: drop.UID, status: drop.Status, phase: rowEntering}
		v.byID[oid] = r
		next = append(next, r)
	}

	// Vanished rows fade out in place: reinsert each at its old position,
	// clamped to the new length. Rows already exiting keep their frame so a
	// fast poll cadence cannot restart the fade and hold them forever.
	var exiting []*row
	for _, r := range v.rows {
		if seen[r.oid] {
			continue
		}
		if r.phase != rowExiting {
			r.phase = rowExiting
			r.frame = 0
		}
		exiting = append(exiting, r)
	}
	for _, r := range exiting {
		at := oldIndex[r.oid]
		if at > len(next) {
			at = len(next)
		}
		next = append(next[:at], append([]*row{r}, next[at:]...)...)
	}

	v.rows = next
	v.refresh()

	if !v.fading && v.anyFading() {
		v.fading = true
		return fadeTick()
	}
	return nil
}

func fadeTick() tea.Cmd {
	return tea.Tick(fadeInterval, func(time.Time) tea.Msg {
		return fadeTickMsg{}
	})
}

func (v *ListView) anyFading() bool {
	for _, r := range v.rows {
		if r.phase != rowSteady {
			return true
		}
	}
	return false
}

// advanceFades moves every fading row one frame forward and removes rows
// whose fade-out finished.
func (v *ListView) advanceFades() {
	kept := v.rows[:0]
	for _, r := range v.rows {
		switch r.phase {
		case rowEntering:
			r.frame++
			if r.frame >= fadeFrames {
				r.phase = rowSteady
				r.frame = 0
			}
			kept = append(kept, r)
		case rowExiting:
			r.frame++
			if r.frame >= fadeFrames {
				delete(v.byID, r.oid)
				continue
			}
			kept = append(kept, r)
		default:
			kept = append(kept, r)
		}
	}
	v.rows = kept
}

// Update handles fade ticks, the filter input, and scrolling.
func (v *ListView) Update(msg tea.Msg) tea.Cmd {
	if v.torn {
		return nil
	}
	switch msg := msg.(type) {
	case fadeTickMsg:
		v.advanceFades()
		v.refresh()
		if v.anyFading() {
			return fadeTick()
		}
		v.fading = false
		return nil

	case tea.KeyMsg:
		if v.filtering {
			switch msg.String() {
			case "esc":
				v.filtering = false
				v.filter.Blur()
				v.filter.SetValue("")
				v.refresh()
				return nil
			case "enter":
				v.filtering = false
				v.filter.Blur()
				return nil
			}
			var cmd tea.Cmd
			v.filter, cmd = v.filter.Update(msg)
			v.refresh()
			return cmd
		}
		if msg.String() == "/" {
			v.filtering = true
			v.filter.Focus()
			return textinput.Blink
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

// SetSize resizes the scroll viewport.
func (v *ListView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

// refresh re-renders the table into the viewport.
func (v *ListView) refresh() {
	v.viewport.SetContent(v.renderRows())
}

// visibleRows applies the fuzzy filter. Filtering is display-only: the row
// model keeps every row so reconciliation is unaffected.
func (v *ListView) visibleRows() []*row {
	query := strings.TrimSpace(v.filter.Value())
	if query == "" {
		return v.rows
	}
	haystack := make([]string, len(v.rows))
	for i, r := range v.rows {
		haystack[i] = r.oid + " " + r.uid + " " + r.status
	}
	matches := fuzzy.Find(query, haystack)
	picked := make(map[int]bool, len(matches))
	for _, m := range matches {
		picked[m.Index] = true
	}
	out := make([]*row, 0, len(matches))
	for i, r := range v.rows {
		if picked[i] {
			out = append(out, r)
		}
	}
	return out
}

func (v *ListView) renderRows() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render(
		pad("OID", colOIDWidth) + pad("OWNER", colUIDWidth) + pad("STATUS", colStatusWidth)))
	b.WriteString("\n")

	for _, r := range v.visibleRows() {
		line := pad(r.oid, colOIDWidth) + pad(r.uid, colUIDWidth)
		styled := line + StatusStyle(r.status).Render(pad(r.status, colStatusWidth))
		switch r.phase {
		case rowEntering, rowExiting:
			styled = fadeStyle.Render(line) + StatusStyle(r.status).Faint(true).Render(pad(r.status, colStatusWidth))
		}
		b.WriteString(styled)
		b.WriteString("\n")
	}
	return b.String()
}

// View draws the filter line (when active) and the table.
func (v *ListView) View() string {
	if v.torn {
		return ""
	}
	if v.filtering || v.filter.Value() != "" {
		return v.filter.View() + "\n" + v.viewport.View()
	}
	return v.viewport.View()
}

// Teardown releases the renderer.
func (v *ListView) Teardown() {
	v.torn = true
	v.rows = nil
	v.byID = map[string]*row{}
}

func pad(s string, width int) string {
	s = runewidth.Truncate(s, width-2, "…")
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}
