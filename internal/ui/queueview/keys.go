package queueview

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the monitor.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	jump      key.Binding
	next      key.Binding
	playPause key.Binding
	remove    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		jump:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		playPause: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "play/pause")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.playPause, k.remove, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.jump},
		{k.next, k.playPause, k.remove},
		{k.quit},
	}
}
