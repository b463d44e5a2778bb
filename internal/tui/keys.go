package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextFile    key.Binding
	PrevFile    key.Binding
	Approve     key.Binding
	Reject      key.Binding
	Defer       key.Binding
	Undo        key.Binding
	ApproveFile key.Binding
	Trust       key.Binding
	Guide       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "prev hunk"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next hunk"),
	),
	NextFile: key.NewBinding(
		key.WithKeys("n", "tab"),
		key.WithHelp("n/tab", "next file"),
	),
	PrevFile: key.NewBinding(
		key.WithKeys("N", "shift+tab"),
		key.WithHelp("N/S-tab", "prev file"),
	),
	Approve: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "approve hunk"),
	),
	Reject: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "reject hunk"),
	),
	Defer: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save for later"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo decision"),
	),
	ApproveFile: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "approve file"),
	),
	Trust: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "trust label"),
	),
	Guide: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "guide panel"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
