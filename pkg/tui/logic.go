package tui

import (
	"strings"

	"tokenview/pkg/detail"
	"tokenview/pkg/models"
	"tokenview/pkg/safety"
	"tokenview/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
)

func listenForWatcher(sub watcher.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

// open navigates to address, pushing it onto the history.
func (m *model) open(address string) {
	m.history = append(m.history, address)
	m.watch(address)
}

// watch starts a fresh session for address. All per-identifier state is
// reset, so the warning gate is evaluated again.
func (m *model) watch(address string) {
	m.address = address
	m.session = m.deps.Watcher.Watch(address, m.deps.Chain)
	m.identity = nil
	m.remote = nil
	m.gate = detail.Gate{}
	m.gateReady = false
	m.descExpanded = false
	m.viewport.GotoTop()
}

// back pops one history entry. It reports false when the prompt is reached.
func (m *model) back() bool {
	if len(m.history) > 0 {
		m.history = m.history[:len(m.history)-1]
	}
	if len(m.history) == 0 {
		m.address = ""
		m.session = 0
		m.identity = nil
		m.remote = nil
		m.gateReady = false
		m.input.SetValue("")
		m.input.Focus()
		return false
	}
	m.watch(m.history[len(m.history)-1])
	return true
}

func (m model) onPrompt() bool {
	return len(m.history) == 0
}

// ready reports whether the identity has both name and symbol. Until then
// the whole view is the loading placeholder.
func (m model) ready() bool {
	return m.identity != nil && m.identity.Err == nil && m.identity.Identity.Resolved()
}

func (m model) userAdded() bool {
	_, ok := m.deps.Chain.UserToken(m.address)
	return ok
}

// applyEvent folds a watcher event into the model. Events of superseded
// sessions are dropped.
func (m *model) applyEvent(ev watcher.Event) {
	switch data := ev.Data.(type) {
	case models.IdentityData:
		if data.Session != m.session {
			return
		}
		m.identity = &data
		// first resolved identity fixes the gate for this session
		if m.ready() && !m.gateReady {
			m.gate = detail.NewGate(m.deps.Classifier.Classify(m.address), m.userAdded())
			m.gateReady = true
		}
	case models.RemoteData:
		if data.Session != m.session || !strings.EqualFold(data.Address, m.address) {
			return
		}
		// a late answer for the previously selected network
		if data.Scope != m.deps.Watcher.Filter().Scope() {
			return
		}
		if data.Err != nil && m.remote != nil && m.remote.Scope == data.Scope {
			return
		}
		m.remote = &data
	}
	if m.ready() {
		m.updateDetailViewport()
	}
}

func (m model) remoteDetail() models.RemoteDetail {
	if m.remote == nil || m.remote.Err != nil {
		return models.RemoteDetail{}
	}
	return m.remote.Detail
}

func (m model) displayModel() detail.DisplayModel {
	var identity models.Identity
	if m.identity != nil {
		identity = m.identity.Identity
	}
	return m.deps.Reconciler.Reconcile(detail.Input{
		Identity:            identity,
		Remote:              m.remoteDetail(),
		UserAdded:           m.userAdded(),
		DescriptionExpanded: m.descExpanded,
	})
}

func (m model) warning() safety.Warning {
	return m.gate.Warning()
}
