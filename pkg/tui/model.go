package tui

import (
	"time"

	"tokenview/pkg/config"
	"tokenview/pkg/detail"
	"tokenview/pkg/models"
	"tokenview/pkg/safety"
	"tokenview/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}

// FavoriteStore is the read/toggle capability for the favorite set.
type FavoriteStore interface {
	IsFavorited(id string) bool
	Toggle(id string) error
}

// Deps are the process-wide collaborators injected into the view.
type Deps struct {
	Watcher    *watcher.Watcher
	Chain      config.ChainConfig
	Classifier *safety.Classifier
	Favorites  FavoriteStore
	Reconciler *detail.Reconciler
	Format     func(float64) string
}

// --- Model ---

type model struct {
	deps Deps
	sub  watcher.Subscriber

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	input    textinput.Model
	viewport viewport.Model
	markdown *markdownRenderer
	width    int
	height   int

	// history holds visited addresses; empty means the address prompt.
	history []string

	// Everything below is keyed to session and reset by open.
	session      uint64
	address      string
	identity     *models.IdentityData
	remote       *models.RemoteData
	gate         detail.Gate
	gateReady    bool
	descExpanded bool

	statusMessage string

	copyText func(string) error
	openURL  func(string) error
}

func initialModel(deps Deps, address string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "0x... token address"
	ti.CharLimit = 42
	ti.Width = 44
	ti.Focus()

	m := model{
		deps:     deps,
		sub:      deps.Watcher.Subscribe(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		input:    ti,
		viewport: viewport.New(0, 0),
		markdown: newMarkdownRenderer(80),
		copyText: clipboard.WriteAll,
		openURL:  openBrowser,
	}
	if address != "" {
		m.open(address)
	}
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenForWatcher(m.sub),
		m.spinner.Tick,
		textinput.Blink,
	)
}

func (m model) promptHelp() help.KeyMap {
	return promptKeys{
		submit: m.keys.Submit,
		quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
