package ipc

import (
	"testing"
	"time"

	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	scripts []string
}

func (f *fakeEvaluator) EvalJS(script string) error {
	f.scripts = append(f.scripts, script)
	return nil
}

func TestBindCallResolvesWithHandlerResult(t *testing.T) {
	eval := &fakeEvaluator{}
	b := New(eval, 100)
	b.BindCall("echo", func(ctx *UiCtx, paramsJSON string) (any, error) {
		return paramsJSON, nil
	}, false, "")

	reply := runtime.NewReply()
	b.HandleIpcRequest(runtime.IpcRequestTask("1", "echo", `"hi"`, reply))

	res := <-reply
	require.NoError(t, res.Err)
	assert.Equal(t, `"hi"`, res.Value)
	require.Len(t, eval.scripts, 1)
	assert.Contains(t, eval.scripts[0], "__auroraview_resolve")
}

func TestBindCallHandlerPanicBecomesHandlerError(t *testing.T) {
	b := New(&fakeEvaluator{}, 100)
	b.BindCall("boom", func(ctx *UiCtx, paramsJSON string) (any, error) {
		panic("kaboom")
	}, false, "")

	reply := runtime.NewReply()
	b.HandleIpcRequest(runtime.IpcRequestTask("1", "boom", "{}", reply))

	res := <-reply
	assert.True(t, runtime.IsKind(res.Err, runtime.ErrHandlerError))
}

func TestUnboundMethodIsMethodNotFound(t *testing.T) {
	b := New(&fakeEvaluator{}, 100)
	reply := runtime.NewReply()
	b.HandleIpcRequest(runtime.IpcRequestTask("1", "nope", "{}", reply))

	res := <-reply
	assert.True(t, runtime.IsKind(res.Err, runtime.ErrMethodNotFound))
}

func TestWildcardNamespaceMatches(t *testing.T) {
	b := New(&fakeEvaluator{}, 100)
	called := false
	b.BindCall("api.*", func(ctx *UiCtx, paramsJSON string) (any, error) {
		called = true
		return nil, nil
	}, false, "")

	reply := runtime.NewReply()
	b.HandleIpcRequest(runtime.IpcRequestTask("1", "api.widgets.list", "{}", reply))
	<-reply

	assert.True(t, called, "expected wildcard handler to be invoked")
}

func TestPendingExpiresAfterDeadline(t *testing.T) {
	b := New(&fakeEvaluator{}, 1)
	reply := runtime.NewReply()
	b.RegisterPending("1", reply)

	time.Sleep(5 * time.Millisecond)
	n := b.ExpirePending(time.Now())
	require.Equal(t, 1, n)
	res := <-reply
	assert.True(t, runtime.IsKind(res.Err, runtime.ErrTimeout))
}

func TestCancelPendingRejectsAllOutstanding(t *testing.T) {
	b := New(&fakeEvaluator{}, 5000)
	r1, r2 := runtime.NewReply(), runtime.NewReply()
	b.RegisterPending("1", r1)
	b.RegisterPending("2", r2)

	n := b.CancelPending()
	require.Equal(t, 2, n)
	for _, r := range []runtime.Reply{r1, r2} {
		res := <-r
		assert.True(t, runtime.IsKind(res.Err, runtime.ErrCancelled))
	}
}

func TestPageTimeoutExceedsHostTimeout(t *testing.T) {
	b := New(&fakeEvaluator{}, 100)
	script := b.InitScript()
	assert.Contains(t, script, "150", "expected page timeout (host + margin) baked into script")
}

func TestHandlePageEventDispatchesRegisteredHandler(t *testing.T) {
	b := New(&fakeEvaluator{}, 100)
	var gotPayload string
	b.BindCall("event.ready", func(ctx *UiCtx, paramsJSON string) (any, error) {
		gotPayload = paramsJSON
		return nil, nil
	}, false, "")

	b.HandlePageEvent("ready", `{"ok":true}`)

	assert.Equal(t, `{"ok":true}`, gotPayload)
}

func TestHandlePageEventWithoutRegisteredHandlerIsNoOp(t *testing.T) {
	eval := &fakeEvaluator{}
	b := New(eval, 100)

	b.HandlePageEvent("nobody-listening", `{}`)

	assert.Empty(t, eval.scripts, "send_event must never push anything back to the page")
}
