package detail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokenview/pkg/safety"
)

func TestNewGate(t *testing.T) {
	tests := []struct {
		warning   safety.Warning
		userAdded bool
		expected  GateState
	}{
		{safety.Unsafe, false, Shown},
		{safety.Unverified, false, Shown},
		{safety.None, false, Hidden},
		{safety.Unsafe, true, Hidden},
		{safety.Unverified, true, Hidden},
		{safety.None, true, Hidden},
	}
	for _, tt := range tests {
		g := NewGate(tt.warning, tt.userAdded)
		assert.Equal(t, tt.expected, g.State(), "%s userAdded=%v", tt.warning, tt.userAdded)
	}
}

func TestGate_Dismiss(t *testing.T) {
	g := NewGate(safety.Unsafe, false)
	assert.True(t, g.ModalOpen())
	assert.False(t, g.BadgeVisible())

	g.Dismiss()
	assert.Equal(t, Dismissed, g.State())
	assert.False(t, g.ModalOpen())
	assert.False(t, g.BadgeVisible(), "badge only for unwarned tokens")

	assert.False(t, g.Cancel(), "dismissed is terminal")
	assert.Equal(t, Dismissed, g.State())
}

func TestGate_Cancel(t *testing.T) {
	g := NewGate(safety.Unverified, false)
	assert.True(t, g.Cancel())
	assert.Equal(t, Hidden, g.State())

	g.Dismiss()
	assert.Equal(t, Hidden, g.State(), "hidden is terminal")
}

func TestGate_BadgeForVerifiedToken(t *testing.T) {
	g := NewGate(safety.None, false)
	assert.True(t, g.BadgeVisible())
	assert.False(t, g.Cancel())
}
