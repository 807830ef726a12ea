package ui

import "github.com/charmbracelet/lipgloss"

// Palette (Tokyo Night based, matching the status colors used in the list
// and graph views).
var (
	ColorBg     = lipgloss.Color("#1a1b26")
	ColorFg     = lipgloss.Color("#c0caf5")
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorRed    = lipgloss.Color("#f7768e")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorOrange = lipgloss.Color("#ff9e64")
	ColorDim    = lipgloss.Color("#787fa0")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	DimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	headerBadgeStyle = lipgloss.NewStyle().Padding(0, 1)

	activeBadgeStyle = headerBadgeStyle.
				Foreground(ColorBg).
				Background(ColorBlue).
				Bold(true)

	inactiveBadgeStyle = headerBadgeStyle.Foreground(ColorDim)

	disabledBadgeStyle = headerBadgeStyle.Foreground(ColorDim).Faint(true)

	listHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	fadeStyle       = lipgloss.NewStyle().Faint(true)
)

var statusStyles = map[string]lipgloss.Style{
	"pending":     lipgloss.NewStyle().Foreground(ColorDim),
	"initialized": lipgloss.NewStyle().Foreground(ColorBlue),
	"writing":     lipgloss.NewStyle().Foreground(ColorYellow),
	"running":     lipgloss.NewStyle().Foreground(ColorYellow),
	"completed":   lipgloss.NewStyle().Foreground(ColorGreen),
	"error":       lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
	"expired":     lipgloss.NewStyle().Foreground(ColorOrange),
	"deleted":     lipgloss.NewStyle().Foreground(ColorDim).Strikethrough(true),
	"cancelled":   lipgloss.NewStyle().Foreground(ColorOrange),
}

// StatusStyle returns the style for a status label. Unknown labels render
// in the default foreground so free-form server statuses still show up.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(ColorFg)
}
