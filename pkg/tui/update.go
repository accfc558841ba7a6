package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokenview/pkg/chains"
	"tokenview/pkg/detail"
	"tokenview/pkg/watcher"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

const statusTTL = 2 * time.Second

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()

	case watcher.Event:
		cmds = append(cmds, listenForWatcher(m.sub))
		m.applyEvent(msg)

	case clearStatusMsg:
		m.statusMessage = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch {
		case m.onPrompt():
			m, cmd = m.updatePrompt(msg)
		case m.gate.ModalOpen():
			m, cmd = m.updateModal(msg)
		default:
			m, cmd = m.updateDetail(msg)
		}
		cmds = append(cmds, cmd)

	default:
		if m.onPrompt() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) updatePrompt(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		address := strings.TrimSpace(m.input.Value())
		if !common.IsHexAddress(address) {
			m.statusMessage = "Invalid token address"
			return m, clearStatusAfter(statusTTL)
		}
		m.input.Blur()
		m.open(address)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateModal handles keys while the safety warning blocks the view.
func (m model) updateModal(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Continue):
		m.gate.Dismiss()
		m.updateDetailViewport()
	case key.Matches(msg, m.keys.Cancel):
		if m.gate.Cancel() {
			m.back()
		}
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m model) updateDetail(msg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.back()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.identity != nil && m.identity.Err != nil {
			m.watch(m.address)
			m.statusMessage = "Retrying..."
			return m, clearStatusAfter(statusTTL)
		}
		return m, nil
	}

	if !m.ready() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.ReadMore):
		m.descExpanded = !m.descExpanded
		m.updateDetailViewport()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copy(m.identityAddress(), "Contract address copied to clipboard!")

	case key.Matches(msg, m.keys.Share):
		dm := m.displayModel()
		if !dm.CanShare() {
			return m, nil
		}
		return m.copy(detail.ShareText(dm.Name, dm.Symbol, m.identityAddress()), "Share link copied to clipboard!")

	case key.Matches(msg, m.keys.Tweet):
		dm := m.displayModel()
		if !dm.CanShare() {
			return m, nil
		}
		return m.browse(detail.TweetURL(dm.Name, dm.Symbol, m.identityAddress()))

	case key.Matches(msg, m.keys.Favorite):
		if err := m.deps.Favorites.Toggle(m.identityAddress()); err != nil {
			m.statusMessage = fmt.Sprintf("Failed to update favorites: %v", err)
		} else if m.deps.Favorites.IsFavorited(m.identityAddress()) {
			m.statusMessage = "Added to favorites"
		} else {
			m.statusMessage = "Removed from favorites"
		}
		return m, clearStatusAfter(statusTTL)

	case key.Matches(msg, m.keys.Network):
		chainID := m.deps.Watcher.Filter().Cycle()
		m.remote = nil
		m.deps.Watcher.RefreshRemote()
		m.updateDetailViewport()
		m.statusMessage = "Network: " + chains.ScopeName(chainID)
		return m, clearStatusAfter(statusTTL)

	case key.Matches(msg, m.keys.OpenLink):
		idx, _ := strconv.Atoi(msg.String())
		links := m.displayModel().Resources
		if idx < 1 || idx > len(links) {
			return m, nil
		}
		return m.browse(links[idx-1].URL)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) identityAddress() string {
	if m.identity != nil && m.identity.Identity.Address != "" {
		return m.identity.Identity.Address
	}
	return m.address
}

func (m model) copy(text, ok string) (model, tea.Cmd) {
	if err := m.copyText(text); err != nil {
		m.statusMessage = "Failed to copy to clipboard"
	} else {
		m.statusMessage = ok
	}
	return m, clearStatusAfter(statusTTL)
}

func (m model) browse(url string) (model, tea.Cmd) {
	if err := m.openURL(url); err != nil {
		m.statusMessage = fmt.Sprintf("Failed to open browser: %v", err)
	} else {
		m.statusMessage = "Opened in browser"
	}
	return m, clearStatusAfter(statusTTL)
}
