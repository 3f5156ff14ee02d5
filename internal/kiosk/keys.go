package kiosk

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the kiosk key bindings. Cart keys act on the highlighted
// catalog item.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Add       key.Binding
	Decrement key.Binding
	Remove    key.Binding
	Clear     key.Binding

	Commit  key.Binding
	Restart key.Binding

	Quit key.Binding
}

// DefaultKeyMap pairs vim-style movement with arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Add: key.NewBinding(
		key.WithKeys("+", "enter", " "),
		key.WithHelp("+", "add"),
	),
	Decrement: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "one less"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "remove"),
	),
	Clear: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "empty cart"),
	),
	Commit: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "order"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "start over"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings lists the bindings shown in the footer, in order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Add, k.Decrement, k.Remove, k.Clear, k.Commit, k.Restart, k.Quit}
}
