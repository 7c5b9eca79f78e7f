package form

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Left     key.Binding
	Right    key.Binding
	Connect  key.Binding
	Create   key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "toggle/press")),
		Left:     key.NewBinding(key.WithKeys("left", "up")),
		Right:    key.NewBinding(key.WithKeys("right", "down")),
		Connect:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "connect")),
		Create:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create")),
		Dismiss:  key.NewBinding(key.WithKeys("enter", "esc")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) helpLine() []key.Binding {
	return []key.Binding{k.Next, k.Activate, k.Connect, k.Create, k.Quit}
}
