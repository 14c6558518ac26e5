// Package ipc implements the JS<->core request/response bus and event
// channel described in spec §4.6: the composed init script, the
// PendingCallback timeout arbiter, and the host-side dispatch table shared
// by JS calls and external ToolInvoke producers.
package ipc

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
)

var log = logging.For("ipc")

// Evaluator is the narrow slice of WidgetBackend the bridge needs to push
// results and events back into the page. The bridge never depends on the
// full backend contract.
type Evaluator interface {
	EvalJS(script string) error
}

// UiCtx is passed to host handlers. It lets a handler enqueue follow-up
// tasks but never block waiting on a reply from the same thread that owns
// the queue (spec §5).
type UiCtx struct {
	bridge *Bridge
}

// Emit schedules a host-to-page event from within a handler.
func (c *UiCtx) Emit(name string, payload any) error {
	return c.bridge.EmitEvent(name, payload)
}

// Handler is a registered method implementation. It runs on the UI thread.
// A non-nil error becomes HandlerError{detail} on the JS side, unless it is
// already a *runtime.Error carrying a more specific kind.
type Handler func(ctx *UiCtx, paramsJSON string) (result any, err error)

// Registration additionally records the metadata bind_call accepts.
type registration struct {
	handler Handler
	mcp     bool
	mcpName string
}

// Bridge owns the PendingCallback map and the host dispatch table. It is
// accessed from the UI thread only; tasks serialize it (spec §4.6 entity
// relationships).
type Bridge struct {
	mu              sync.Mutex
	exact           map[string]registration
	wildcards       []wildcardEntry
	pending         *pendingCallbacks
	eval            Evaluator
	jsCallTimeoutMs int
}

type wildcardEntry struct {
	prefix string
	reg    registration
}

// New constructs a Bridge. jsCallTimeoutMs is the single source of truth
// for I7: both the init script and the PendingCallback deadlines derive
// from this one value.
func New(eval Evaluator, jsCallTimeoutMs int) *Bridge {
	return &Bridge{
		exact:           make(map[string]registration),
		pending:         newPendingCallbacks(),
		eval:            eval,
		jsCallTimeoutMs: jsCallTimeoutMs,
	}
}

// InitScript returns the composed init script for the current timeout.
func (b *Bridge) InitScript() string {
	return ComposeInitScript(b.jsCallTimeoutMs + PageTimeoutMargin)
}

// BindCall registers a method handler. A method ending in ".*" is treated
// as a namespace wildcard (e.g. "api.*" matches "api.foo", "api.bar.baz").
func (b *Bridge) BindCall(method string, h Handler, mcp bool, mcpName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg := registration{handler: h, mcp: mcp, mcpName: mcpName}
	if strings.HasSuffix(method, ".*") {
		prefix := strings.TrimSuffix(method, "*")
		b.wildcards = append(b.wildcards, wildcardEntry{prefix: prefix, reg: reg})
		return
	}
	b.exact[method] = reg
}

func (b *Bridge) lookup(method string) (registration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if reg, ok := b.exact[method]; ok {
		return reg, true
	}
	for _, w := range b.wildcards {
		if strings.HasPrefix(method, w.prefix) {
			return w.reg, true
		}
	}
	return registration{}, false
}

// McpTools returns the method -> exposed-name pairs of handlers registered
// with mcp=true, for an external tool-invocation transport to advertise.
func (b *Bridge) McpTools() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string)
	for method, reg := range b.exact {
		if reg.mcp {
			name := reg.mcpName
			if name == "" {
				name = method
			}
			out[method] = name
		}
	}
	return out
}

// HandleIpcRequest dispatches a page-to-host RPC call (runtime.TaskIpcRequest).
// It always resolves the task's reply exactly once (spec I4) and also
// pushes the result back into the page via __auroraview_resolve, since the
// page's call() promise and the host Task.ReplyTo are two independent
// observers of the same result.
func (b *Bridge) HandleIpcRequest(t runtime.Task) {
	reg, ok := b.lookup(t.Method)
	if !ok {
		b.finish(t, nil, runtime.NewError(runtime.ErrMethodNotFound, "%s", t.Method))
		return
	}
	result, err := b.invoke(reg.handler, t.ParamsRaw)
	b.finish(t, result, err)
}

// HandleToolInvoke dispatches an external tool call through the same
// dispatch table as JS calls (spec §4.6).
func (b *Bridge) HandleToolInvoke(t runtime.Task) {
	reg, ok := b.lookup(t.ToolName)
	if !ok {
		if t.HasReply() {
			t.ReplyTo.Reject(runtime.NewError(runtime.ErrMethodNotFound, "%s", t.ToolName))
		}
		return
	}
	result, err := b.invoke(reg.handler, t.ArgsRaw)
	if t.HasReply() {
		if err != nil {
			t.ReplyTo.Reject(err)
		} else {
			t.ReplyTo.Resolve(result)
		}
	}
}

// HandlePageEvent dispatches a page-to-host send_event call to whatever
// handler On() registered under the "event."+name namespace. Unlike
// HandleIpcRequest there is no reply channel and nothing is pushed back to
// the page: send_event is fire-and-forget from the page's perspective.
func (b *Bridge) HandlePageEvent(name, payloadJSON string) {
	reg, ok := b.lookup("event." + name)
	if !ok {
		return
	}
	if _, err := b.invoke(reg.handler, payloadJSON); err != nil {
		log.Warn("send_event handler for %q returned an error: %v", name, err)
	}
}

func (b *Bridge) invoke(h Handler, paramsJSON string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = runtime.NewError(runtime.ErrHandlerError, "%v", r)
		}
	}()
	result, err = h(&UiCtx{bridge: b}, paramsJSON)
	if err != nil {
		if _, isRuntimeErr := err.(*runtime.Error); !isRuntimeErr {
			err = runtime.WrapError(runtime.ErrHandlerError, err)
		}
	}
	return result, err
}

func (b *Bridge) finish(t runtime.Task, result any, err error) {
	if t.HasReply() {
		if err != nil {
			t.ReplyTo.Reject(err)
		} else {
			t.ReplyTo.Resolve(result)
		}
	}
	// The reply above already signalled the page-originated call's
	// buffered(1) channel; drop the PendingCallback entry too so
	// ExpirePending's later deadline sweep doesn't send a second,
	// blocking signal into it.
	b.pending.remove(t.CorrelationID)
	b.pushToPage(t.CorrelationID, result, err)
}

func (b *Bridge) pushToPage(id string, result any, err error) {
	if b.eval == nil {
		return
	}
	var resultJSON, errJSON string
	if err != nil {
		kind := runtime.ErrHandlerError.String()
		detail := err.Error()
		if re, ok := err.(*runtime.Error); ok {
			kind = re.Kind.String()
			detail = re.Detail
		}
		raw, _ := json.Marshal(map[string]string{"kind": kind, "detail": detail})
		errJSON = string(raw)
		resultJSON = "null"
	} else {
		raw, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			log.Error("failed to marshal result for %s: %v", id, marshalErr)
			raw = []byte("null")
		}
		resultJSON = string(raw)
		errJSON = "null"
	}
	script := fmt.Sprintf("window.__auroraview_resolve(%q, %s, %s);", id, resultJSON, errJSON)
	if evalErr := b.eval.EvalJS(script); evalErr != nil {
		log.Warn("failed to deliver ipc response %s to page: %v", id, evalErr)
	}
}

// EmitEvent pushes a host-to-page event (runtime.TaskEmitEvent handling).
func (b *Bridge) EmitEvent(name string, payload any) error {
	if b.eval == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return runtime.WrapError(runtime.ErrInvalidArguments, err)
	}
	script := fmt.Sprintf("window.__auroraview_dispatch_event(%q, %s);", name, string(raw))
	return b.eval.EvalJS(script)
}

// RegisterPending tracks a call awaiting its result, keyed by the client's
// correlation id, with a deadline derived from the single timeout value.
func (b *Bridge) RegisterPending(id string, reply runtime.Reply) {
	deadline := time.Now().Add(time.Duration(b.jsCallTimeoutMs) * time.Millisecond)
	b.pending.add(id, deadline, reply)
}

// ExpirePending removes and signals Timeout for every entry past its
// deadline. Called once per tick by the owning instance.
func (b *Bridge) ExpirePending(now time.Time) int {
	return b.pending.expireBefore(now)
}

// CancelPending rejects every outstanding call with Cancelled. Called once
// by the owning instance when it moves from CloseRequested to Destroying.
func (b *Bridge) CancelPending() int {
	return b.pending.cancelAll()
}
