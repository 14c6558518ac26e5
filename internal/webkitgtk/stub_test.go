package webkitgtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubBackendCreateThenLoadURL(t *testing.T) {
	b := NewStubBackend()
	require.NoError(t, b.Create(0, false, 800, 600))
	require.NoError(t, b.LoadURL("https://example.com"))
	assert.NotZero(t, b.NativeHandle(), "expected a non-zero handle after Create")
}

func TestStubBackendDestroyRejectsFurtherCalls(t *testing.T) {
	b := NewStubBackend()
	_ = b.Create(0, false, 800, 600)
	require.NoError(t, b.Destroy())
	assert.Error(t, b.LoadURL("https://example.com"))
}

func TestStubBackendDeliverIPCInvokesSubscriber(t *testing.T) {
	b := NewStubBackend()
	var got string
	b.SubscribeIPC(func(payload string) { got = payload })

	b.DeliverIPC(`{"type":"send_event","name":"ping"}`)

	assert.Equal(t, `{"type":"send_event","name":"ping"}`, got)
}

func TestStubBackendAddInitScriptAccumulates(t *testing.T) {
	b := NewStubBackend()
	require.NoError(t, b.AddInitScript("window.a = 1;"))
	require.NoError(t, b.AddInitScript("window.b = 2;"))
	assert.Len(t, b.initScripts, 2)
}
