package runtime

import (
	"sync"

	"github.com/auroraview/auroraview/internal/logging"
)

var lifecycleLog = logging.For("lifecycle")

// LifecycleState is the monotonic window-lifecycle state machine (spec §3).
// Re-entry into a prior state is forbidden.
type LifecycleState int

const (
	Creating LifecycleState = iota
	Active
	CloseRequested
	Destroying
	Destroyed
)

func (s LifecycleState) String() string {
	switch s {
	case Creating:
		return "Creating"
	case Active:
		return "Active"
	case CloseRequested:
		return "CloseRequested"
	case Destroying:
		return "Destroying"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// CloseReason explains why a close transition happened.
type CloseReason int

const (
	UserRequest CloseReason = iota
	AppRequest
	ParentClosed
	SystemShutdown
	CloseError
)

func (r CloseReason) String() string {
	switch r {
	case UserRequest:
		return "UserRequest"
	case AppRequest:
		return "AppRequest"
	case ParentClosed:
		return "ParentClosed"
	case SystemShutdown:
		return "SystemShutdown"
	case CloseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// legalNext enumerates the only allowed forward transitions.
var legalNext = map[LifecycleState]LifecycleState{
	Creating:       Active,
	Active:         CloseRequested,
	CloseRequested: Destroying,
	Destroying:     Destroyed,
}

// LifecycleManager owns the LifecycleState, a close-signal channel, and an
// ordered LIFO cleanup stack (spec §4.3).
type LifecycleManager struct {
	mu      sync.Mutex
	state   LifecycleState
	reason  CloseReason
	closeCh chan CloseReason
	cleanup []func()
	ran     bool
}

// NewLifecycleManager constructs a manager in the Creating state.
func NewLifecycleManager() *LifecycleManager {
	return &LifecycleManager{
		state:   Creating,
		closeCh: make(chan CloseReason, 1),
	}
}

// State returns the current LifecycleState. Safe for concurrent use.
func (m *LifecycleManager) State() LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetState enforces monotonicity. It returns false without mutating state
// on an illegal transition; it never panics on caller input, only on an
// internal bug (skipping two states at once is rejected, not fatal).
func (m *LifecycleManager) SetState(next LifecycleState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next == m.state {
		return true
	}
	if legalNext[m.state] != next {
		lifecycleLog.Warn("rejected illegal transition %s -> %s", m.state, next)
		return false
	}
	m.state = next
	return true
}

// RequestClose atomically moves Active (or Creating) -> CloseRequested. Idempotent: a
// second call with the same or a different reason is a no-op once the
// transition has already happened.
func (m *LifecycleManager) RequestClose(reason CloseReason) {
	m.mu.Lock()
	if m.state != Active && m.state != Creating {
		m.mu.Unlock()
		return
	}
	m.state = CloseRequested
	m.reason = reason
	m.mu.Unlock()

	select {
	case m.closeCh <- reason:
	default:
	}
}

// PollClose returns the pending CloseReason without blocking, or false if
// no close has been requested yet.
func (m *LifecycleManager) PollClose() (CloseReason, bool) {
	select {
	case r := <-m.closeCh:
		return r, true
	default:
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state >= CloseRequested {
			return m.reason, true
		}
		return 0, false
	}
}

// RegisterCleanup pushes a hook to run exactly once during Destroying, in
// LIFO order relative to registration.
func (m *LifecycleManager) RegisterCleanup(f func()) {
	if f == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanup = append(m.cleanup, f)
}

// RunCleanup executes every registered hook exactly once, LIFO, isolating
// panics so one failing hook never prevents the rest from running.
func (m *LifecycleManager) RunCleanup() {
	m.mu.Lock()
	if m.ran {
		m.mu.Unlock()
		return
	}
	m.ran = true
	hooks := m.cleanup
	m.cleanup = nil
	m.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		runCleanupHook(hooks[i])
	}
}

func runCleanupHook(f func()) {
	defer func() {
		if r := recover(); r != nil {
			lifecycleLog.Error("cleanup hook panicked: %v", r)
		}
	}()
	f()
}
