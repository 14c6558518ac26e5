package protocol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveServesFileUnderRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<b>hi</b>"), 0o644))

	h := NewAssetHandler(dir)
	body, ct, err := h.Resolve("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", string(body))
	assert.Equal(t, "text/html; charset=utf-8", ct)
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	h := NewAssetHandler(dir)

	_, _, err := h.Resolve("/../../../etc/passwd")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveRejectsTraversalViaDotDotSegments(t *testing.T) {
	dir := t.TempDir()
	sibling := filepath.Join(filepath.Dir(dir), "secret.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("nope"), 0o644))
	defer os.Remove(sibling)

	h := NewAssetHandler(dir)
	_, _, err := h.Resolve("/../" + filepath.Base(sibling))
	assert.ErrorIs(t, err, ErrForbidden)
}
