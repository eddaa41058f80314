// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the TUI reacts to. The same physical key can
// appear in several bindings; which one applies depends on the focused area.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Query input.
	Search key.Binding
	Recall key.Binding

	// Result list and detail scrolling.
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Open      key.Binding
	NewSearch key.Binding

	// Revectorize queues the open resource for revectorization.
	Revectorize key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Search: bind("enter", "search", "enter"),
		Recall: bind("↑/↓", "history", "up", "down"),

		Up:        bind("↑/k", "up", "up", "k"),
		Down:      bind("↓/j", "down", "down", "j"),
		Top:       bind("g", "top", "g", "home"),
		Bottom:    bind("G", "bottom", "G", "end"),
		Open:      bind("enter", "open", "enter"),
		NewSearch: bind("n", "new search", "n", "/"),

		Revectorize: bind("r", "revectorize", "r"),
	}
}

// ShortHelp returns the hints shown while typing a query.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Recall, k.Back}
}

// ResultsHelp returns the hints shown while browsing results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Open, k.Help, k.Quit}
}

// DetailHelp returns the hints shown on the detail view.
func (k *KeyMap) DetailHelp() []key.Binding {
	return []key.Binding{k.Up, k.Top, k.Revectorize, k.Back}
}

// FullHelp groups every binding for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Open},
		{k.Search, k.Recall, k.NewSearch, k.Back},
		{k.Revectorize},
		{k.Help, k.Quit},
	}
}
