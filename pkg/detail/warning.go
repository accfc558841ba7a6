package detail

import "tokenview/pkg/safety"

// GateState is the visibility state of the safety warning modal.
type GateState int

const (
	Hidden GateState = iota
	Shown
	Dismissed
)

func (s GateState) String() string {
	switch s {
	case Shown:
		return "shown"
	case Dismissed:
		return "dismissed"
	}
	return "hidden"
}

// Gate decides whether the blocking warning modal is shown for one
// identifier. It is evaluated once and only moves out of Shown.
type Gate struct {
	state   GateState
	warning safety.Warning
}

// NewGate starts Shown for unverified or unsafe tokens the user has not added
// to their list, Hidden otherwise.
func NewGate(w safety.Warning, userAdded bool) Gate {
	g := Gate{state: Hidden, warning: w}
	if w != safety.None && !userAdded {
		g.state = Shown
	}
	return g
}

// Dismiss moves Shown to Dismissed.
func (g *Gate) Dismiss() {
	if g.state == Shown {
		g.state = Dismissed
	}
}

// Cancel moves Shown to Hidden and reports whether the caller should navigate
// back.
func (g *Gate) Cancel() bool {
	if g.state != Shown {
		return false
	}
	g.state = Hidden
	return true
}

func (g Gate) State() GateState {
	return g.state
}

func (g Gate) Warning() safety.Warning {
	return g.warning
}

// ModalOpen reports whether the modal blocks the view.
func (g Gate) ModalOpen() bool {
	return g.state == Shown
}

// BadgeVisible reports whether the verified badge is drawn in the header.
func (g Gate) BadgeVisible() bool {
	return g.state != Shown && g.warning == safety.None
}
