// Package queue implements the multi-producer, single-consumer task queue
// that bridges background threads (IPC, MCP, protocol handlers) to the UI
// thread, and the coalescing wake signal that tells the UI loop a tick is
// due (spec §4.4).
package queue

import (
	"sync"

	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
	eapachequeue "github.com/eapache/queue"
)

var log = logging.For("queue")

// highWaterMark is the soft threshold past which MessageQueue logs a
// single warning, the first time the depth exceeds it, since the spec's
// default queue is unbounded and a runaway producer would otherwise grow
// silently.
const highWaterMark = 4096

// MessageQueue is the thread-safe FIFO of runtime.Task described in spec
// §4.4. It has exactly one consumer (I2); producers are unbounded by
// default. A ring buffer (github.com/eapache/queue) backs storage so a
// sustained burst doesn't repeatedly reallocate a slice.
type MessageQueue struct {
	mu    sync.Mutex
	items *eapachequeue.Queue
	proxy EventLoopProxy
	warn  bool
}

// New constructs an empty MessageQueue with no proxy attached. Call
// SetEventLoopProxy before any producer starts (spec §4.4 ordering hazard).
func New() *MessageQueue {
	return &MessageQueue{items: eapachequeue.New()}
}

// SetEventLoopProxy installs the proxy that Push wakes after enqueuing.
// Tasks pushed before this call are not lost — they sit in the queue until
// the first tick drains them.
func (q *MessageQueue) SetEventLoopProxy(p EventLoopProxy) {
	q.mu.Lock()
	q.proxy = p
	q.mu.Unlock()
}

// Push enqueues a task and wakes the UI loop. It always succeeds; the
// caller is a background producer thread and must never block or fail
// here. Returns the queue depth after the push, for soft high-water
// logging by callers that care.
func (q *MessageQueue) Push(t runtime.Task) int {
	q.mu.Lock()
	q.items.Add(t)
	n := q.items.Length()
	proxy := q.proxy
	shouldWarn := n > highWaterMark && !q.warn
	if shouldWarn {
		q.warn = true
	}
	q.mu.Unlock()

	if shouldWarn {
		log.Warn("queue depth exceeded %d items; a producer may be outrunning the UI thread", highWaterMark)
	}
	if proxy != nil {
		proxy.Wake()
	}
	return n
}

// Drain removes at most max items in enqueue order, calling fn for each.
// It returns the number drained and whether more remain. This is the
// bounded per-tick drain from spec §4.4: if more remain, the caller's
// proxy immediately re-arms so the next tick continues, preventing OS
// input starvation.
func (q *MessageQueue) Drain(max int, fn func(runtime.Task)) (drained int, more bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for drained < max && q.items.Length() > 0 {
		t := q.items.Peek().(runtime.Task)
		q.items.Remove()
		q.mu.Unlock()
		fn(t)
		q.mu.Lock()
		drained++
	}
	return drained, q.items.Length() > 0
}

// DrainAll removes every pending item regardless of the per-tick budget.
// Used when closing: every remaining task's reply must be signalled
// before the queue itself is discarded (spec I4).
func (q *MessageQueue) DrainAll(fn func(runtime.Task)) int {
	total := 0
	for {
		n, more := q.Drain(256, fn)
		total += n
		if !more {
			return total
		}
	}
}

// Len returns the current queue depth. Intended for diagnostics only; the
// value is stale the instant it's read under concurrent producers.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}
