package auroraview

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/auroraview/auroraview/internal/webkitgtk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostEmbeddedInstance(t *testing.T, hooks LifecycleHooks) (*Instance, *webkitgtk.StubBackend) {
	t.Helper()
	inst := New(Config{ParentHandle: 0xABCD, Width: 640, Height: 480}, hooks)
	require.Equal(t, runtime.HostEmbeddedOwner, inst.Mode())
	stub, ok := inst.backend.(*webkitgtk.StubBackend)
	require.True(t, ok, "expected a *webkitgtk.StubBackend, got %T", inst.backend)
	return inst, stub
}

func TestSetURLBeforeShowIsDeferredThenAppliedOnShow(t *testing.T) {
	inst, stub := newHostEmbeddedInstance(t, LifecycleHooks{})

	require.NoError(t, inst.SetURL("https://example.com/one"))
	require.NoError(t, inst.SetURL("https://example.com/two"))

	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	assert.Equal(t, "https://example.com/two", stub.URL(), "expected last-writer-wins URL applied")
}

func TestSetURLAfterShowIsEnqueuedAndAppliedOnNextTick(t *testing.T) {
	inst, stub := newHostEmbeddedInstance(t, LifecycleHooks{})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	require.NoError(t, inst.SetURL("https://example.com/after-show"))
	inst.ProcessEvents()

	assert.Equal(t, "https://example.com/after-show", stub.URL())
}

func TestEvalJsRoundTrip(t *testing.T) {
	inst, _ := newHostEmbeddedInstance(t, LifecycleHooks{})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	done := make(chan struct{})
	var evalErr error
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, evalErr = inst.EvalJs(ctx, "1+1")
		close(done)
	}()

	// Drive the tick that will pick up the queued EvalJs task.
	deadline := time.After(time.Second)
	for {
		inst.ProcessEvents()
		select {
		case <-done:
			assert.NoError(t, evalErr)
			return
		case <-deadline:
			t.Fatal("EvalJs never resolved")
		default:
		}
	}
}

func TestBindCallDispatchesIpcRequestFromPage(t *testing.T) {
	inst, stub := newHostEmbeddedInstance(t, LifecycleHooks{})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	var gotParams string
	inst.BindCall("demo.echo", func(paramsJSON string) (any, error) {
		gotParams = paramsJSON
		return map[string]string{"ok": "yes"}, nil
	}, false, "")

	stub.DeliverIPC(`{"type":"ipc_request","id":"1","method":"demo.echo","params":{"x":1}}`)
	inst.ProcessEvents()

	assert.NotEmpty(t, gotParams, "expected the handler to have been invoked")
}

func TestOnDispatchesSendEventFromPage(t *testing.T) {
	inst, stub := newHostEmbeddedInstance(t, LifecycleHooks{})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	received := make(chan string, 1)
	inst.On("ready", func(payload json.RawMessage) {
		received <- string(payload)
	})

	stub.DeliverIPC(`{"type":"send_event","name":"ready","payload":{"ok":true}}`)
	inst.ProcessEvents()

	select {
	case payload := <-received:
		assert.JSONEq(t, `{"ok":true}`, payload)
	default:
		t.Fatal("expected the On handler to have fired")
	}
}

func TestCloseTransitionsLifecycleAndCallsOnClose(t *testing.T) {
	var gotReason runtime.CloseReason
	closed := false
	inst, _ := newHostEmbeddedInstance(t, LifecycleHooks{
		OnClose: func(reason runtime.CloseReason) {
			gotReason = reason
			closed = true
		},
	})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	inst.Close()

	terminated := false
	for i := 0; i < 10 && !terminated; i++ {
		terminated = inst.ProcessEvents()
	}
	require.True(t, terminated, "expected ProcessEvents to eventually report terminated")
	assert.True(t, closed, "expected OnClose to have been called")
	assert.Equal(t, runtime.AppRequest, gotReason)
	assert.Equal(t, runtime.Destroyed, inst.State())

	// ProcessEvents must keep reporting terminated afterward (spec §8).
	assert.True(t, inst.ProcessEvents(), "expected ProcessEvents to remain sticky-true after Destroyed")
}

func TestIpcOnlyHeadlessShowSkipsBackendCreate(t *testing.T) {
	inst := New(Config{PackedHeadless: true}, LifecycleHooks{})
	require.Equal(t, runtime.IpcOnlyHeadless, inst.Mode())
	require.NoError(t, inst.Show())
	assert.Zero(t, inst.backend.NativeHandle(), "expected Show to skip backend Create in headless mode")

	var gotParams string
	inst.BindCall("demo.echo", func(paramsJSON string) (any, error) {
		gotParams = paramsJSON
		return nil, nil
	}, false, "")

	reply := runtime.NewReply()
	inst.mq.Push(runtime.IpcRequestTask("h1", "demo.echo", `{"a":1}`, reply))
	inst.ProcessEvents()

	assert.NotEmpty(t, gotParams, "expected the IPC handler to run without any native widget")

	inst.Close()
	terminated := false
	for i := 0; i < 10 && !terminated; i++ {
		terminated = inst.ProcessEvents()
	}
	assert.True(t, terminated, "expected headless instance to still honor Close")
}

func TestStandaloneThreadedShowReturnsImmediatelyAndRunsLoopUntilClose(t *testing.T) {
	inst := New(Config{Wait: false}, LifecycleHooks{})
	require.Equal(t, runtime.StandaloneThreaded, inst.Mode())

	require.NoError(t, inst.Show())

	inst.Close()

	deadline := time.After(2 * time.Second)
	for {
		if inst.State() == runtime.Destroyed {
			return
		}
		select {
		case <-deadline:
			t.Fatal("standalone threaded loop never reached Destroyed after Close")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStandaloneBlockingShowBlocksUntilClose(t *testing.T) {
	inst := New(Config{Wait: true}, LifecycleHooks{})
	require.Equal(t, runtime.StandaloneBlocking, inst.Mode())

	go func() {
		time.Sleep(20 * time.Millisecond)
		inst.Close()
	}()

	done := make(chan error, 1)
	go func() {
		done <- inst.Show()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Show never returned after Close")
	}
	assert.Equal(t, runtime.Destroyed, inst.State())
}

func TestPendingIpcCallIsCancelledOnClose(t *testing.T) {
	inst, _ := newHostEmbeddedInstance(t, LifecycleHooks{})
	require.NoError(t, inst.Show())
	inst.ProcessEvents()

	reply := runtime.NewReply()
	inst.mq.Push(runtime.IpcRequestTask("call-1", "demo.nonexistent", "{}", reply))

	inst.Close()
	for i := 0; i < 10; i++ {
		inst.ProcessEvents()
	}

	select {
	case res := <-reply:
		assert.True(t,
			runtime.IsKind(res.Err, runtime.ErrCancelled) || runtime.IsKind(res.Err, runtime.ErrMethodNotFound),
			"expected Cancelled or MethodNotFound, got %v", res.Err)
	default:
		t.Fatal("expected the pending reply to have been signalled")
	}
}
