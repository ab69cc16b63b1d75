package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Down    key.Binding
	Up      key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Remount key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll")),
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "back")),
		Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Remount: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replay")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Top, k.Bottom, k.Remount, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Top, k.Bottom}, {k.Remount, k.Quit}}
}
