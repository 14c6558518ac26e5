package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredContentLastWriterWins(t *testing.T) {
	var d DeferredContent

	d.SetURL("https://example.com")
	d.SetHTML("<p>hi</p>", "https://base.example")

	res, ok := d.Take()
	require.True(t, ok, "expected a pending resolution")
	require.True(t, res.IsHTML, "expected the later SetHTML to win, got %+v", res)
	assert.Equal(t, "<p>hi</p>", res.HTML)
	assert.Equal(t, "https://base.example", res.BaseURL)
}

func TestDeferredContentURLAfterHTMLWins(t *testing.T) {
	var d DeferredContent

	d.SetHTML("<p>hi</p>", "")
	d.SetURL("https://example.com")

	res, ok := d.Take()
	require.True(t, ok, "expected a pending resolution")
	require.False(t, res.IsHTML, "expected the later SetURL to win, got %+v", res)
	assert.Equal(t, "https://example.com", res.URL)
}

func TestDeferredContentTakeClearsSlot(t *testing.T) {
	var d DeferredContent
	d.SetURL("https://example.com")

	_, ok := d.Take()
	require.True(t, ok, "expected first Take to report a value")
	_, ok = d.Take()
	assert.False(t, ok, "expected second Take to report no value")
}

func TestDeferredContentNoWritesYieldsNoResolution(t *testing.T) {
	var d DeferredContent
	_, ok := d.Take()
	assert.False(t, ok, "expected no resolution before any Set call")
}

func TestResolveRunModeStandaloneBlocking(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wait = true
	assert.Equal(t, StandaloneBlocking, ResolveRunMode(cfg))
}

func TestResolveRunModeStandaloneThreaded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wait = false
	assert.Equal(t, StandaloneThreaded, ResolveRunMode(cfg))
}

func TestResolveRunModeHostEmbeddedChild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParentHandle = 0x1234
	cfg.ParentMode = ParentChild
	assert.Equal(t, HostEmbeddedChild, ResolveRunMode(cfg))
}

func TestResolveRunModeHostEmbeddedOwner(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParentHandle = 0x1234
	cfg.ParentMode = ParentOwner
	assert.Equal(t, HostEmbeddedOwner, ResolveRunMode(cfg))
}

func TestResolveRunModePackedHeadlessOverridesEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParentHandle = 0x1234
	cfg.ParentMode = ParentChild
	cfg.PackedHeadless = true
	assert.Equal(t, IpcOnlyHeadless, ResolveRunMode(cfg))
}

func TestRequireModeRejectsDisallowedMode(t *testing.T) {
	err := RequireMode(HostEmbeddedChild, "resize", StandaloneBlocking, StandaloneThreaded)
	assert.True(t, IsKind(err, ErrIllegalForMode))
}

func TestRequireModeAllowsListedMode(t *testing.T) {
	assert.NoError(t, RequireMode(StandaloneBlocking, "resize", StandaloneBlocking))
}
