// Package pump implements the platform message-pump policy (spec §4.5):
// when the runtime may pump window messages, which HWND it may pump, and
// how window destruction is drained deterministically. One implementation
// exists per OS behind the Policy interface; the drain step that follows
// the pump (draining the MessageQueue) lives in one place regardless of
// platform, by construction (spec §9).
package pump

import (
	"time"

	"github.com/auroraview/auroraview/internal/runtime"
)

// CloseSource tags what generated a close request, for diagnostics only;
// the actual LifecycleManager.RequestClose reason is always UserRequest
// or ParentClosed per spec §4.5.
type CloseSource int

const (
	CloseSourceUser CloseSource = iota
	CloseSourceParent
)

// Policy is the platform-specific trait described in spec §4.5. Every
// implementation must honor I1 (widget touched only on its own UI thread)
// and I5 (own_hwnd-only pumping).
type Policy interface {
	// ProcessEvents pumps at most a bounded number of OS messages destined
	// for this instance's own window, then drains the message queue. It
	// returns true once the instance has terminated; subsequent calls are
	// no-ops that keep returning true (spec §6, §8).
	ProcessEvents() bool

	// RequestDestroy posts the OS close request and enters the
	// post-destroy drain loop so queued destroy messages are actually
	// delivered even though nothing else is pumping (spec §4.5).
	RequestDestroy()
}

// maxPumpIterationsPerTick bounds PeekMessage draining per tick to avoid
// tail-latency spikes starving the rest of the host's frame.
const maxPumpIterationsPerTick = 64

// maxPostDestroyIterations bounds the post-destroy drain loop.
const maxPostDestroyIterations = 100

// Base holds the fields shared by every platform's Policy: the lifecycle
// manager it reports into and the message queue it drains after pumping.
// Platform pumps embed Base and only implement the OS-specific PeekMessage
// equivalent.
type Base struct {
	Lifecycle *runtime.LifecycleManager
	Queue     Drainer
	MaxTasks  int
}

// Drainer is the slice of queue.MessageQueue the pump needs, kept narrow
// so this package doesn't import queue's ring-buffer storage concerns.
type Drainer interface {
	Drain(max int, fn func(runtime.Task)) (drained int, more bool)
}

// DrainQueue runs the bounded per-tick queue drain shared by every
// platform pump (spec §4.4 + §4.5 step 2).
func (b *Base) DrainQueue(fn func(runtime.Task)) (more bool) {
	max := b.MaxTasks
	if max <= 0 {
		max = 64
	}
	_, more = b.Queue.Drain(max, fn)
	return more
}

// Terminated reports whether the instance has reached Destroyed, the
// sticky true that ProcessEvents must keep returning (spec §8).
func (b *Base) Terminated() bool {
	return b.Lifecycle.State() == runtime.Destroyed
}

// ParentMonitor polls a parent handle's liveness at a low frequency as the
// fallback path when installing a subclass/hook is forbidden (spec §4.5).
type ParentMonitor struct {
	IsAlive  func() bool
	Interval time.Duration
	stop     chan struct{}
}

// NewParentMonitor constructs a monitor that has not started polling yet.
func NewParentMonitor(isAlive func() bool, interval time.Duration) *ParentMonitor {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &ParentMonitor{IsAlive: isAlive, Interval: interval, stop: make(chan struct{})}
}

// Start polls IsAlive until it returns false, then calls onDead exactly
// once, or until Stop is called.
func (m *ParentMonitor) Start(onDead func()) {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				if m.IsAlive != nil && !m.IsAlive() {
					onDead()
					return
				}
			}
		}
	}()
}

// Stop ends the polling goroutine.
func (m *ParentMonitor) Stop() {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
}
