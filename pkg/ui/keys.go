package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dialog's keybindings.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	MediaMode   key.Binding
	FileMode    key.Binding
	CollageMode key.Binding
	Retry       key.Binding
	Caption     key.Binding
	Send        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap provides sensible default keybindings.
var DefaultKeyMap = KeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	MoveUp:      key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
	MoveDown:    key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
	MediaMode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "as media")),
	FileMode:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "as files")),
	CollageMode: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "as album")),
	Retry:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
	Caption:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "caption")),
	Send:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:        key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "cancel")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Caption, k.MediaMode, k.FileMode, k.CollageMode, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.MediaMode, k.FileMode, k.CollageMode},
		{k.Caption, k.Send, k.Retry},
		{k.Help, k.Quit},
	}
}
