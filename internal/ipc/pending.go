package ipc

import (
	"time"

	"github.com/auroraview/auroraview/internal/runtime"
)

// pendingCallback is one outstanding RPC awaiting a result, keyed by
// correlation id in a flat table (spec §9: arena + index, not a pointer
// graph). UI-thread-only; no lock needed (spec §5).
type pendingCallback struct {
	id       string
	deadline time.Time
	reply    runtime.Reply
}

// pendingCallbacks is the map described in spec §4.6 / §3. It is never
// touched off the UI thread: every mutation happens from within a Task
// handled during Drain.
type pendingCallbacks struct {
	byID map[string]pendingCallback
}

func newPendingCallbacks() *pendingCallbacks {
	return &pendingCallbacks{byID: make(map[string]pendingCallback)}
}

func (p *pendingCallbacks) add(id string, deadline time.Time, reply runtime.Reply) {
	p.byID[id] = pendingCallback{id: id, deadline: deadline, reply: reply}
}

func (p *pendingCallbacks) resolve(id string, value any) bool {
	entry, ok := p.byID[id]
	if !ok {
		return false
	}
	delete(p.byID, id)
	entry.reply.Resolve(value)
	return true
}

func (p *pendingCallbacks) reject(id string, err error) bool {
	entry, ok := p.byID[id]
	if !ok {
		return false
	}
	delete(p.byID, id)
	entry.reply.Reject(err)
	return true
}

// remove drops id from the table without signalling its reply, for when
// the caller has already resolved/rejected the reply itself and only
// needs the deadline-tracking entry cleared.
func (p *pendingCallbacks) remove(id string) bool {
	if _, ok := p.byID[id]; !ok {
		return false
	}
	delete(p.byID, id)
	return true
}

// expireBefore removes and rejects every entry whose deadline has passed,
// called once per tick (spec §4.6: "on each tick the bridge removes
// expired entries and signals Timeout").
func (p *pendingCallbacks) expireBefore(now time.Time) int {
	expired := 0
	for id, entry := range p.byID {
		if now.After(entry.deadline) {
			delete(p.byID, id)
			entry.reply.Reject(runtime.NewError(runtime.ErrTimeout, "ipc call %s exceeded its deadline", id))
			expired++
		}
	}
	return expired
}

// cancelAll rejects every outstanding entry with Cancelled, used when the
// instance transitions past CloseRequested (spec §5).
func (p *pendingCallbacks) cancelAll() int {
	n := len(p.byID)
	for id, entry := range p.byID {
		delete(p.byID, id)
		entry.reply.Reject(runtime.NewError(runtime.ErrCancelled, "instance closing"))
	}
	return n
}
