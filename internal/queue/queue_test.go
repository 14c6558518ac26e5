package queue

import (
	"testing"

	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageQueuePreservesEnqueueOrder(t *testing.T) {
	q := New()
	q.Push(runtime.LoadURLTask("a"))
	q.Push(runtime.LoadURLTask("b"))
	q.Push(runtime.LoadURLTask("c"))

	var seen []string
	drained, more := q.Drain(10, func(task runtime.Task) {
		seen = append(seen, task.URL)
	})

	require.Equal(t, 3, drained)
	require.False(t, more)
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("drain order mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageQueueRespectsPerTickBudget(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Push(runtime.LoadURLTask("x"))
	}

	drained, more := q.Drain(2, func(runtime.Task) {})
	assert.Equal(t, 2, drained)
	assert.True(t, more)
	assert.Equal(t, 3, q.Len())
}

func TestMessageQueueWakesProxyOnPush(t *testing.T) {
	q := New()
	woke := 0
	q.SetEventLoopProxy(NewFuncProxy(func() { woke++ }))

	q.Push(runtime.LoadURLTask("a"))
	q.Push(runtime.LoadURLTask("b"))

	assert.Equal(t, 2, woke)
}

func TestDrainAllSignalsReplyChannelsOnClose(t *testing.T) {
	q := New()
	reply := runtime.NewReply()
	q.Push(runtime.IpcRequestTask("1", "m", "{}", reply))

	n := q.DrainAll(func(task runtime.Task) {
		if task.HasReply() {
			task.ReplyTo.Reject(runtime.NewError(runtime.ErrClosed, "instance closed"))
		}
	})

	require.Equal(t, 1, n)
	select {
	case res := <-reply:
		assert.True(t, runtime.IsKind(res.Err, runtime.ErrClosed))
	default:
		t.Fatal("expected reply to be signalled")
	}
}
