package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the dashboard keyboard shortcuts
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Switch    key.Binding
	Refresh   key.Binding
	TopUp     key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding

	// Funding dialog
	Method key.Binding
	Submit key.Binding
	Close  key.Binding
}

var dashboardKeys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "Move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "Move down"),
	),
	Switch: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "Switch to the highlighted organization"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "Refresh balance"),
	),
	TopUp: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "Fund wallet"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "Toggle help"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "Back to the main view"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "Quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+C", "Force quit"),
	),
	Method: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "method"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "continue"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}

// helpBindings are listed on the help screen, in order.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Refresh, k.TopUp, k.Help, k.Quit, k.ForceQuit}
}

// dialogBindings are listed under the funding dialog.
func (k keyMap) dialogBindings() []key.Binding {
	return []key.Binding{k.Method, k.Submit, k.Close}
}
