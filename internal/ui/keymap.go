package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Graph       key.Binding
	List        key.Binding
	ToggleMode  key.Binding
	Orientation key.Binding
	Filter      key.Binding
	Up          key.Binding
	Down        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Graph: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "graph view"),
		),
		List: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "list view"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Orientation: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "flip orientation"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleMode, k.Orientation, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Graph, k.List, k.ToggleMode},
		{k.Orientation, k.Filter},
		{k.Up, k.Down, k.Quit},
	}
}
