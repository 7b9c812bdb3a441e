package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerEnabled(t *testing.T) {
	m := NewManager("signup_disabled=on, beta_feed=off, broken, half=50%")

	assert.True(t, m.Enabled("signup_disabled", 0))
	assert.True(t, m.Enabled("SIGNUP_DISABLED", 7))
	assert.False(t, m.Enabled("beta_feed", 7))
	assert.False(t, m.Enabled("unknown_flag", 7))
	assert.False(t, m.Enabled("broken", 7))

	// Percent rollout is deterministic per user.
	first := m.Enabled("half", 42)
	assert.Equal(t, first, m.Enabled("half", 42))
	// Anonymous users never land in a percent rollout.
	assert.False(t, m.Enabled("half", 0))
}

func TestManagerNilSafe(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled("anything", 1))
}

func TestManagerEmptyConfig(t *testing.T) {
	m := NewManager("")
	assert.False(t, m.Enabled("signup_disabled", 1))
}
