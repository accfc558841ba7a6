package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the detail view until the user quits. An empty address opens
// the address prompt.
func Start(deps Deps, address, version string) error {
	Version = version
	m := initialModel(deps, address)
	defer deps.Watcher.Unsubscribe(m.sub)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
