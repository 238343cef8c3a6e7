package ui

import "github.com/charmbracelet/bubbles/key"

var keys = struct {
	Roll      key.Binding
	Theme     key.Binding
	NextTopic key.Binding
	PrevTopic key.Binding
	Quit      key.Binding
}{
	Roll:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "roll")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	NextTopic: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next topic")),
	PrevTopic: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev topic")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func helpLine() string {
	bindings := []key.Binding{keys.Roll, keys.NextTopic, keys.PrevTopic, keys.Theme, keys.Quit}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
