package graph

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const maxNodeLabel = 24

var (
	nodeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	nodeIDStyle   = lipgloss.NewStyle().Bold(true)
	edgeHintStyle = lipgloss.NewStyle().Faint(true)

	layerGapLR = "   "
	layerGapTB = ""
)

// StatusStyler maps a status label to the style used for it. The caller owns
// the palette; Render only applies it.
type StatusStyler func(status string) lipgloss.Style

// Render draws a layout as a text canvas. Each node is a bordered box with
// its oid, status, and downstream targets; layers run left-to-right or
// top-to-bottom per the layout's orientation. Rendering touches only the
// layout's value copies, never the live model.
func Render(l *Layout, styler StatusStyler) string {
	if l == nil || len(l.Layers) == 0 {
		return edgeHintStyle.Render("no drops in session")
	}
	if styler == nil {
		styler = func(string) lipgloss.Style { return lipgloss.NewStyle() }
	}

	downstream := make(map[string][]string, len(l.Edges))
	for _, e := range l.Edges {
		downstream[e.Src] = append(downstream[e.Src], e.Dst)
	}
	for _, targets := range downstream {
		sort.Strings(targets)
	}

	boxes := make([][]string, len(l.Layers))
	for i, layer := range l.Layers {
		boxes[i] = make([]string, len(layer))
		for j, node := range layer {
			boxes[i][j] = renderNode(node, downstream[node.OID], styler)
		}
	}

	if l.Orientation == TB {
		rows := make([]string, len(boxes))
		for i, layer := range boxes {
			rows[i] = lipgloss.JoinHorizontal(lipgloss.Top, interleave(layer, " ")...)
		}
		return strings.Join(rows, "\n"+layerGapTB)
	}

	cols := make([]string, len(boxes))
	for i, layer := range boxes {
		cols[i] = lipgloss.JoinVertical(lipgloss.Left, layer...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, interleave(cols, layerGapLR)...)
}

func renderNode(n Node, targets []string, styler StatusStyler) string {
	label := runewidth.Truncate(n.OID, maxNodeLabel, "…")
	lines := []string{nodeIDStyle.Render(label)}

	status := n.Status
	if status == "" {
		status = "-"
	}
	lines = append(lines, styler(n.Status).Render(runewidth.Truncate(status, maxNodeLabel, "…")))

	if len(targets) > 0 {
		hint := "▶ " + strings.Join(targets, ", ")
		lines = append(lines, edgeHintStyle.Render(runewidth.Truncate(hint, maxNodeLabel, "…")))
	}

	return nodeBoxStyle.Render(strings.Join(lines, "\n"))
}

// interleave inserts sep between items for JoinHorizontal calls.
func interleave(items []string, sep string) []string {
	if sep == "" || len(items) < 2 {
		return items
	}
	out := make([]string, 0, len(items)*2-1)
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}
