// Package keymap holds the chat and document view key bindings.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is shared by every view; each view reads the bindings it handles.
type KeyMap struct {
	Quit key.Binding

	// Chat view.
	Send        key.Binding
	Reset       key.Binding
	NextCourse  key.Binding
	PrevCourse  key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding
	Documents   key.Binding

	// Document view. NextCourse also switches course there.
	Back    key.Binding
	Up      key.Binding
	Down    key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the stock bindings. Chat bindings avoid plain letters
// because the question input has focus there.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("ctrl+c", "quit", "ctrl+c"),

		Send:        bind("enter", "ask", "enter"),
		Reset:       bind("ctrl+r", "new chat", "ctrl+r"),
		NextCourse:  bind("tab", "course", "tab"),
		PrevCourse:  bind("shift+tab", "prev course", "shift+tab"),
		ScrollUp:    bind("pgup", "scroll up", "pgup"),
		ScrollDown:  bind("pgdn", "scroll down", "pgdown"),
		HistoryPrev: bind("↑", "previous question", "up"),
		HistoryNext: bind("↓", "next question", "down"),
		Documents:   bind("ctrl+o", "documents", "ctrl+o"),

		Back:    bind("esc", "back", "esc"),
		Up:      bind("↑/k", "up", "up", "k"),
		Down:    bind("↓/j", "down", "down", "j"),
		Delete:  bind("d", "delete", "d", "delete"),
		Refresh: bind("r", "refresh", "r"),
	}
}

func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.HistoryPrev, k.NextCourse, k.Reset, k.Documents, k.Quit}
}

func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCourse, k.Delete, k.Refresh, k.Back}
}

// Matches reports whether keyStr, as produced by tea.KeyMsg.String, is one of
// the binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
