package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the detail view bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Submit    key.Binding
	Back      key.Binding
	Continue  key.Binding
	Cancel    key.Binding
	ReadMore  key.Binding
	Copy      key.Binding
	Share     key.Binding
	Tweet     key.Binding
	Favorite  key.Binding
	Network   key.Binding
	OpenLink  key.Binding
	Retry     key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open token"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "continue"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "cancel"),
		),
		ReadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "read more/hide"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy address"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "copy share link"),
		),
		Tweet: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "tweet"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Network: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next network"),
		),
		OpenLink: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "open link"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Favorite, k.Share, k.Copy, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.ReadMore, k.OpenLink, k.Copy, k.Share, k.Tweet},
		{k.Favorite, k.Network, k.Retry},
		{k.Back, k.Help, k.Quit},
	}
}

// promptKeys is the help shown on the address prompt.
type promptKeys struct {
	submit, quit key.Binding
}

func (k promptKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.quit}
}

func (k promptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
