//go:build !windows

package pump

import (
	"testing"

	"github.com/auroraview/auroraview/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrainer struct {
	drained int
	calls   []runtime.Task
}

func (d *fakeDrainer) Drain(max int, fn func(runtime.Task)) (int, bool) {
	n := 0
	for n < max && len(d.calls) > 0 {
		fn(d.calls[0])
		d.calls = d.calls[1:]
		n++
	}
	d.drained += n
	return n, len(d.calls) > 0
}

func TestGenericPolicyProcessEventsDrainsQueue(t *testing.T) {
	d := &fakeDrainer{calls: []runtime.Task{runtime.LoadURLTask("https://a"), runtime.LoadURLTask("https://b")}}
	lifecycle := runtime.NewLifecycleManager()
	lifecycle.SetState(runtime.Active)

	p := NewGenericPolicy(lifecycle, d, 64)
	terminated := p.ProcessEvents()
	require.False(t, terminated, "expected ProcessEvents to report not-terminated while Active")
	assert.Equal(t, 2, d.drained)
}

func TestGenericPolicyProcessEventsReportsTerminated(t *testing.T) {
	lifecycle := runtime.NewLifecycleManager()
	lifecycle.SetState(runtime.Active)
	lifecycle.SetState(runtime.CloseRequested)
	lifecycle.SetState(runtime.Destroying)
	lifecycle.SetState(runtime.Destroyed)

	p := NewGenericPolicy(lifecycle, &fakeDrainer{}, 64)
	assert.True(t, p.ProcessEvents(), "expected ProcessEvents to report terminated once Destroyed")
}

func TestGenericPolicyRequestDestroyDoesNotPanic(t *testing.T) {
	lifecycle := runtime.NewLifecycleManager()
	p := NewGenericPolicy(lifecycle, &fakeDrainer{}, 64)
	assert.NotPanics(t, p.RequestDestroy)
}
