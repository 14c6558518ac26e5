package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleManagerStartsInCreating(t *testing.T) {
	m := NewLifecycleManager()
	assert.Equal(t, Creating, m.State())
}

func TestLifecycleManagerRejectsSkippedTransition(t *testing.T) {
	m := NewLifecycleManager()
	assert.False(t, m.SetState(Destroying), "expected Creating -> Destroying to be rejected")
	assert.Equal(t, Creating, m.State(), "state must not mutate on a rejected transition")
}

func TestLifecycleManagerAllowsLegalChain(t *testing.T) {
	m := NewLifecycleManager()
	for _, next := range []LifecycleState{Active, CloseRequested, Destroying, Destroyed} {
		require.True(t, m.SetState(next), "expected transition to %s to succeed", next)
	}
}

func TestLifecycleManagerRequestCloseIsIdempotent(t *testing.T) {
	m := NewLifecycleManager()
	m.SetState(Active)

	m.RequestClose(UserRequest)
	m.RequestClose(AppRequest)

	reason, ok := m.PollClose()
	require.True(t, ok, "expected a pending close reason")
	assert.Equal(t, UserRequest, reason, "expected the first RequestClose's reason to stick")
	assert.Equal(t, CloseRequested, m.State())
}

func TestLifecycleManagerRequestCloseNoOpAfterDestroying(t *testing.T) {
	m := NewLifecycleManager()
	m.SetState(Active)
	m.SetState(CloseRequested)
	m.SetState(Destroying)

	m.RequestClose(UserRequest)
	assert.Equal(t, Destroying, m.State(), "RequestClose must not resurrect a later state")
}

func TestLifecycleManagerCleanupRunsOnceLIFO(t *testing.T) {
	m := NewLifecycleManager()
	var order []int
	m.RegisterCleanup(func() { order = append(order, 1) })
	m.RegisterCleanup(func() { order = append(order, 2) })
	m.RegisterCleanup(func() { order = append(order, 3) })

	m.RunCleanup()
	m.RunCleanup()

	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestLifecycleManagerCleanupIsolatesPanics(t *testing.T) {
	m := NewLifecycleManager()
	ran := false
	m.RegisterCleanup(func() { ran = true })
	m.RegisterCleanup(func() { panic("boom") })

	m.RunCleanup()

	assert.True(t, ran, "expected the hook registered before the panicking one to still run")
}
