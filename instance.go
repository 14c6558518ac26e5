// Package auroraview is the host-facing API described in spec §6: new,
// set_url/set_html, show, process_events, close, emit/on, bind_call,
// eval_js, register_protocol, and the lifecycle hooks. It wires together
// the runtime state machine, the message queue, the IPC bridge, the
// platform pump policy, and a WidgetBackend into one cohesive Instance.
package auroraview

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/auroraview/auroraview/internal/ipc"
	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/protocol"
	"github.com/auroraview/auroraview/internal/pump"
	"github.com/auroraview/auroraview/internal/queue"
	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/auroraview/auroraview/internal/webkitgtk"
)

var log = logging.For("instance")

// Config is the caller-facing configuration record (spec §4.1). A zero
// Title, Width, Height, JSCallTimeoutMs, MaxTasksPerTick or WakeBatchMs is
// replaced by the platform default in New; boolean fields, Wait included,
// are used exactly as given.
type Config struct {
	Title             string
	Width             int
	Height            int
	Resizable         bool
	Decorations       bool
	Debug             bool
	ContextMenu       bool
	AssetRoot         string
	AllowFileProtocol bool
	ParentHandle      uintptr
	ParentMode        runtime.ParentMode
	Icon              []byte
	JSCallTimeoutMs   int
	MaxTasksPerTick   int
	WakeBatchMs       int
	Wait              bool
	PackedHeadless    bool
}

func (c Config) toRuntime() runtime.Config {
	d := runtime.DefaultConfig()
	rc := runtime.Config{
		Title:             firstNonEmpty(c.Title, d.Title),
		Width:             firstPositive(c.Width, d.Width),
		Height:            firstPositive(c.Height, d.Height),
		Resizable:         c.Resizable,
		Decorations:       c.Decorations,
		Debug:             c.Debug,
		ContextMenu:       c.ContextMenu,
		AssetRoot:         c.AssetRoot,
		AllowFileProtocol: c.AllowFileProtocol,
		ParentHandle:      c.ParentHandle,
		ParentMode:        c.ParentMode,
		Icon:              c.Icon,
		JSCallTimeoutMs:   firstPositive(c.JSCallTimeoutMs, d.JSCallTimeoutMs),
		MaxTasksPerTick:   firstPositive(c.MaxTasksPerTick, d.MaxTasksPerTick),
		WakeBatchMs:       firstPositive(c.WakeBatchMs, d.WakeBatchMs),
		Wait:              c.Wait,
		PackedHeadless:    c.PackedHeadless,
	}
	return rc
}

func firstNonEmpty(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func firstPositive(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

// LifecycleHooks are optional callbacks an embedder may attach (spec §6).
type LifecycleHooks struct {
	OnReady   func()
	OnShow    func()
	OnHide    func()
	OnClose   func(reason runtime.CloseReason)
	OnResized func(w, h int)
	OnMoved   func(x, y int)
	OnFocused func()
	OnBlurred func()
}

// Instance is one embeddable WebView runtime (spec §2).
type Instance struct {
	mu sync.Mutex

	config    runtime.Config
	deferred  runtime.DeferredContent
	mode      runtime.RunMode
	lifecycle *runtime.LifecycleManager
	mq        *queue.MessageQueue
	bridge    *ipc.Bridge
	backend   webkitgtk.Backend
	pumpImpl  pump.Policy
	hooks     LifecycleHooks

	wakeTicker    *queue.WakeBatchTicker
	proxy         queue.EventLoopProxy
	parentMonitor *pump.ParentMonitor

	backendCreated bool
}

// New constructs an Instance. RunMode is resolved immediately and fixed
// for the instance's entire lifetime (spec §4.2); it is never
// reconsidered by any later call.
func New(cfg Config, hooks LifecycleHooks) *Instance {
	rc := cfg.toRuntime()
	mode := runtime.ResolveRunMode(rc)

	inst := &Instance{
		config:    rc,
		mode:      mode,
		lifecycle: runtime.NewLifecycleManager(),
		mq:        queue.New(),
		backend:   selectBackend(),
		hooks:     hooks,
	}
	inst.bridge = ipc.New(inst.backend, rc.JSCallTimeoutMs)

	// The proxy must exist before any background producer starts (spec
	// §4.4 known hazard). New() is synchronous and returns before the
	// caller can start one, so installing it here satisfies the ordering
	// requirement unconditionally.
	inst.proxy = inst.makeProxy()
	inst.mq.SetEventLoopProxy(inst.proxy)

	inst.lifecycle.SetState(runtime.Active)
	log.Info("instance created in %s", mode)
	return inst
}

func (i *Instance) makeProxy() queue.EventLoopProxy {
	if i.mode.IsHostEmbedded() || i.mode == runtime.IpcOnlyHeadless {
		// The host's own tick already polls the queue; no independent
		// wake mechanism is needed (spec §4.4).
		return queue.NopProxy{}
	}
	return queue.NewChannelProxy()
}

// Mode returns the fixed RunMode.
func (i *Instance) Mode() runtime.RunMode { return i.mode }

// SetURL sets the page URL. Before the widget exists this writes the
// deferred slot (last-writer-wins, spec I6); afterward it enqueues a task.
func (i *Instance) SetURL(url string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.lifecycle.State() >= runtime.CloseRequested {
		return runtime.NewError(runtime.ErrClosed, "SetURL after close")
	}
	if !i.backendCreated {
		i.deferred.SetURL(url)
		return nil
	}
	i.mq.Push(runtime.LoadURLTask(url))
	return nil
}

// SetHTML sets inline HTML content, same deferred/enqueued split as SetURL.
func (i *Instance) SetHTML(html, baseURL string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.lifecycle.State() >= runtime.CloseRequested {
		return runtime.NewError(runtime.ErrClosed, "SetHTML after close")
	}
	if !i.backendCreated {
		i.deferred.SetHTML(html, baseURL)
		return nil
	}
	i.mq.Push(runtime.LoadHTMLTask(html, baseURL))
	return nil
}

// Show resolves and enters the chosen RunMode (spec §6). For
// StandaloneBlocking it blocks until the window closes; for every other
// mode it returns once the widget is created and shown.
func (i *Instance) Show() error {
	if err := i.createBackendAndApplyDeferred(); err != nil {
		return err
	}

	switch i.mode {
	case runtime.StandaloneBlocking:
		if err := i.backend.Show(); err != nil {
			return err
		}
		return i.runStandaloneLoop()
	case runtime.StandaloneThreaded:
		if err := i.backend.Show(); err != nil {
			return err
		}
		go func() {
			if err := i.runStandaloneLoop(); err != nil {
				log.Error("standalone loop exited: %v", err)
			}
		}()
		return nil
	case runtime.HostEmbeddedChild, runtime.HostEmbeddedOwner:
		return i.backend.Show()
	case runtime.IpcOnlyHeadless:
		return nil
	}
	return nil
}

func (i *Instance) createBackendAndApplyDeferred() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.backendCreated {
		return nil
	}

	child := i.config.ParentMode == runtime.ParentChild
	if i.mode != runtime.IpcOnlyHeadless {
		if err := i.backend.Create(i.config.ParentHandle, child, i.config.Width, i.config.Height); err != nil {
			return runtime.WrapError(runtime.ErrWidgetError, err)
		}
		if err := i.backend.SetTitle(i.config.Title); err != nil {
			log.Warn("SetTitle failed: %v", err)
		}
		if err := i.backend.AddInitScript(i.bridge.InitScript()); err != nil {
			log.Warn("AddInitScript failed: %v", err)
		}
		i.backend.SubscribeIPC(i.onPageMessage)

		if i.config.AssetRoot != "" {
			assetHandler := protocol.NewAssetHandler(i.config.AssetRoot)
			i.backend.RegisterProtocol(protocol.Scheme, func(path string) ([]byte, string, error) {
				return assetHandler.Resolve(path)
			})
		}
	}
	i.backendCreated = true

	if i.mode == runtime.HostEmbeddedChild || i.mode == runtime.HostEmbeddedOwner {
		if mon := newParentMonitor(i.config.ParentHandle); mon != nil {
			i.parentMonitor = mon
			mon.Start(func() {
				i.lifecycle.RequestClose(runtime.ParentClosed)
				i.proxy.Wake()
			})
		}
	}

	if res, ok := i.deferred.Take(); ok {
		if res.IsHTML {
			i.mq.Push(runtime.LoadHTMLTask(res.HTML, res.BaseURL))
		} else {
			i.mq.Push(runtime.LoadURLTask(res.URL))
		}
	}

	i.pumpImpl = i.makePump()

	if i.hooks.OnReady != nil {
		i.hooks.OnReady()
	}
	if i.hooks.OnShow != nil {
		i.hooks.OnShow()
	}
	return nil
}

// ProcessEvents drains one tick. Required in HostEmbedded mode; returns
// true once the instance has terminated, sticky thereafter (spec §6, §8).
func (i *Instance) ProcessEvents() bool {
	i.mu.Lock()
	lifecycle := i.lifecycle
	bridge := i.bridge
	pumpImpl := i.pumpImpl
	i.mu.Unlock()

	if lifecycle.State() == runtime.Destroyed {
		return true
	}

	if reason, closing := lifecycle.PollClose(); closing && lifecycle.State() == runtime.CloseRequested {
		i.transitionToDestroying(reason)
	}

	terminated := false
	if pumpImpl != nil {
		terminated = pumpImpl.ProcessEvents()
	} else {
		i.drainOneTick()
	}

	if bridge != nil {
		bridge.ExpirePending(time.Now())
	}

	if terminated {
		i.finishDestroy()
		return true
	}
	return lifecycle.State() == runtime.Destroyed
}

func (i *Instance) makePump() pump.Policy {
	drainer := queueDrainer{i}
	return newPlatformPump(i.lifecycle, drainer, i.config.MaxTasksPerTick, i.backend.NativeHandle())
}

type queueDrainer struct{ inst *Instance }

func (d queueDrainer) Drain(max int, fn func(runtime.Task)) (int, bool) {
	n, more := d.inst.mq.Drain(max, func(t runtime.Task) {
		d.inst.handleTask(t)
		fn(t)
	})
	if more {
		d.inst.proxy.Wake()
	}
	return n, more
}

func (i *Instance) drainOneTick() {
	max := i.config.MaxTasksPerTick
	if max <= 0 {
		max = 64
	}
	i.mq.Drain(max, i.handleTask)
}

func (i *Instance) handleTask(t runtime.Task) {
	if i.lifecycle.State() >= runtime.CloseRequested && t.Kind != runtime.TaskClose {
		if t.HasReply() {
			t.ReplyTo.Reject(runtime.NewError(runtime.ErrClosed, "instance is closing"))
		}
		return
	}

	switch t.Kind {
	case runtime.TaskLoadURL:
		if err := i.backend.LoadURL(t.URL); err != nil {
			log.Warn("LoadUrl failed: %v", err)
		}
	case runtime.TaskLoadHTML:
		if err := i.backend.LoadHTML(t.HTML, t.BaseURL); err != nil {
			log.Warn("LoadHtml failed: %v", err)
		}
	case runtime.TaskEvalJS:
		err := i.backend.EvalJS(t.Script)
		if t.HasReply() {
			if err != nil {
				t.ReplyTo.Reject(runtime.WrapError(runtime.ErrWidgetError, err))
			} else {
				t.ReplyTo.Resolve(nil)
			}
		}
	case runtime.TaskEmitEvent:
		if err := i.bridge.EmitEvent(t.Name, json.RawMessage(t.PayloadRaw)); err != nil {
			log.Warn("EmitEvent failed: %v", err)
		}
	case runtime.TaskIpcRequest:
		i.bridge.HandleIpcRequest(t)
	case runtime.TaskToolInvoke:
		i.bridge.HandleToolInvoke(t)
	case runtime.TaskResize:
		if err := i.backend.SetSize(t.Width, t.Height); err != nil {
			log.Warn("Resize failed: %v", err)
		} else if i.hooks.OnResized != nil {
			i.hooks.OnResized(t.Width, t.Height)
		}
	case runtime.TaskSetTitle:
		if err := i.backend.SetTitle(t.Title); err != nil {
			log.Warn("SetTitle failed: %v", err)
		}
	case runtime.TaskShow:
		i.backend.Show()
	case runtime.TaskHide:
		i.backend.Hide()
		if i.hooks.OnHide != nil {
			i.hooks.OnHide()
		}
	case runtime.TaskClose:
		i.lifecycle.RequestClose(runtime.AppRequest)
	case runtime.TaskCustom:
		if t.Run != nil {
			t.Run()
		}
	}
}

// onPageMessage is invoked on the UI thread by the backend whenever the
// page posts a message (spec §4.7 subscribe_ipc).
func (i *Instance) onPageMessage(payload string) {
	var msg struct {
		Type   string `json:"type"`
		ID     string `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params"`
		Name   string `json:"name"`
		Payload any   `json:"payload"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		log.Warn("malformed page message: %v", err)
		return
	}

	switch msg.Type {
	case "ipc_request":
		paramsRaw, _ := json.Marshal(msg.Params)
		reply := runtime.NewReply()
		i.bridge.RegisterPending(msg.ID, reply)
		i.mq.Push(runtime.IpcRequestTask(msg.ID, msg.Method, string(paramsRaw), reply))
	case "send_event":
		payloadRaw, _ := json.Marshal(msg.Payload)
		name := msg.Name
		i.mq.Push(runtime.CustomTask(func() {
			i.bridge.HandlePageEvent(name, string(payloadRaw))
		}))
	default:
		log.Debug("ignoring unknown page message type %q", msg.Type)
	}
}

func (i *Instance) transitionToDestroying(reason runtime.CloseReason) {
	i.mu.Lock()
	moved := i.lifecycle.SetState(runtime.Destroying)
	i.mu.Unlock()
	if !moved {
		return
	}
	i.bridge.CancelPending()
	i.mq.DrainAll(func(t runtime.Task) {
		if t.HasReply() {
			t.ReplyTo.Reject(runtime.NewError(runtime.ErrCancelled, "instance closing"))
		}
	})
	if i.hooks.OnClose != nil {
		i.hooks.OnClose(reason)
	}
	if i.pumpImpl != nil {
		i.pumpImpl.RequestDestroy()
	}
	// Nothing else advances Destroying -> Destroyed: the platform pump's
	// own Terminated() check is defined in terms of Destroyed already
	// being set, so it can never be the thing that sets it.
	i.finishDestroy()
}

func (i *Instance) finishDestroy() {
	i.mu.Lock()
	if i.lifecycle.State() != runtime.Destroying {
		i.mu.Unlock()
		return
	}
	i.mu.Unlock()

	// Cleanup hooks and backend teardown run while still Destroying
	// (spec §3/§8); Destroyed is only set once they're done.
	if err := i.backend.Destroy(); err != nil {
		log.Warn("backend Destroy failed: %v", err)
	}
	i.lifecycle.RunCleanup()
	if i.wakeTicker != nil {
		i.wakeTicker.Stop()
	}
	if i.parentMonitor != nil {
		i.parentMonitor.Stop()
	}

	i.mu.Lock()
	i.lifecycle.SetState(runtime.Destroyed)
	i.mu.Unlock()
}

func (i *Instance) runStandaloneLoop() error {
	cp, ok := i.proxy.(*queue.ChannelProxy)
	if !ok {
		return runtime.NewError(runtime.ErrInvalidState, "standalone mode requires a channel proxy")
	}
	ticker := queue.NewWakeBatchTicker(time.Duration(i.config.WakeBatchMs) * time.Millisecond)
	i.wakeTicker = ticker
	defer ticker.Stop()

	for {
		if i.ProcessEvents() {
			return nil
		}
		select {
		case <-cp.Chan():
		case <-ticker.C():
		case <-time.After(16 * time.Millisecond):
		}
	}
}

// Close posts request_close(AppRequest) and returns immediately (spec §6).
func (i *Instance) Close() {
	i.lifecycle.RequestClose(runtime.AppRequest)
	i.proxy.Wake()
}

// Emit sends a host-to-page event.
func (i *Instance) Emit(name string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return runtime.WrapError(runtime.ErrInvalidArguments, err)
	}
	i.mq.Push(runtime.EmitEventTask(name, string(raw)))
	return nil
}

// On registers a host-side handler for a page->host event (spec §6's
// host-side "on"). It is a thin wrapper over BindCall's event namespace so
// events and RPC share one dispatch table, distinguished by the
// "event." method prefix used internally.
func (i *Instance) On(name string, handler func(payload json.RawMessage)) {
	i.bridge.BindCall("event."+name, func(ctx *ipc.UiCtx, paramsJSON string) (any, error) {
		handler(json.RawMessage(paramsJSON))
		return nil, nil
	}, false, "")
}

// BindCall registers an RPC method handler (spec §6). When mcp is true the
// method is also exposed to out-of-process tool consumers via mcpbridge.
func (i *Instance) BindCall(method string, handler func(paramsJSON string) (any, error), mcp bool, mcpName string) {
	i.bridge.BindCall(method, func(ctx *ipc.UiCtx, paramsJSON string) (any, error) {
		return handler(paramsJSON)
	}, mcp, mcpName)
}

// EvalJs queues script for evaluation on the UI thread. It returns a nil
// value once the backend has accepted the script, or a WidgetError if that
// dispatch fails; the script's own JavaScript result is not returned.
func (i *Instance) EvalJs(ctx context.Context, script string) (any, error) {
	reply := runtime.NewReply()
	i.mq.Push(runtime.EvalJSTask(script, reply))
	select {
	case res := <-reply:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, runtime.WrapError(runtime.ErrTimeout, ctx.Err())
	}
}

// RegisterProtocol installs a custom resource scheme handler.
func (i *Instance) RegisterProtocol(scheme string, handler func(path string) ([]byte, string, error)) error {
	return i.backend.RegisterProtocol(scheme, handler)
}

// RegisterCleanup adds a LIFO cleanup hook run exactly once during Destroying.
func (i *Instance) RegisterCleanup(f func()) {
	i.lifecycle.RegisterCleanup(f)
}

// State returns the current LifecycleState, mostly useful for tests and
// diagnostics; embedders should prefer the lifecycle hooks.
func (i *Instance) State() runtime.LifecycleState {
	return i.lifecycle.State()
}
