package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	restart   key.Binding
	logout    key.Binding
	copy      key.Binding
	refresh   key.Binding
	buildInfo key.Binding
	esc       key.Binding
	quit      key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	restart:   key.NewBinding(key.WithKeys("r")),
	logout:    key.NewBinding(key.WithKeys("l")),
	copy:      key.NewBinding(key.WithKeys("c")),
	refresh:   key.NewBinding(key.WithKeys("s")),
	buildInfo: key.NewBinding(key.WithKeys("v")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n", "esc")),
}
