// Package keymap holds the TUI key bindings. KeyMap satisfies help.KeyMap,
// so the help view and the status line render from the same definitions.
package keymap

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

var _ help.KeyMap = (*KeyMap)(nil)

type KeyMap struct {
	// Global.
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Lists: the menu, the catalog and outlines.
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Reload key.Binding

	// Chat.
	Send       key.Binding
	NewSession key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

func binding(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: binding("ctrl+c", "quit", "ctrl+c"),
		Help: binding("?", "help", "?"),
		Back: binding("esc", "back", "esc"),

		Up:     binding("↑/k", "up", "up", "k"),
		Down:   binding("↓/j", "down", "down", "j"),
		Select: binding("enter", "select", "enter"),
		Reload: binding("r", "reload", "r"),

		Send:       binding("enter", "ask", "enter"),
		NewSession: binding("ctrl+n", "new chat", "ctrl+n"),
		PageUp:     binding("pgup", "scroll up", "pgup"),
		PageDown:   binding("pgdn", "scroll down", "pgdown"),
	}
}

// ShortHelp is shown in the status line before the first answer.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Back, k.Quit}
}

// ChatHelp replaces ShortHelp once a conversation is under way.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewSession, k.PageUp, k.Back}
}

// FullHelp groups every binding into columns for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Reload},
		{k.Send, k.NewSession, k.PageUp, k.PageDown},
		{k.Back, k.Help, k.Quit},
	}
}
