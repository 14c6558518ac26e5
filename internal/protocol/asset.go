// Package protocol implements the built-in auroraview:// resource scheme:
// requests resolve under config.asset_root, and any path escaping that
// root is rejected (spec §6). On Windows the widget may surface this as
// https://auroraview.localhost/path; the backend is responsible for
// intercepting before DNS, this package only resolves the path.
package protocol

import (
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/auroraview/auroraview/internal/logging"
)

var log = logging.For("protocol")

// ErrForbidden is returned when a request path would escape the asset
// root. There is no library in the example pack specialized for sandboxed
// path resolution; filepath.Rel plus a ".." check is the standard-library
// idiom for this and needs no third-party dependency.
var ErrForbidden = errors.New("protocol: path escapes asset root")

// Scheme is the registered custom scheme name.
const Scheme = "auroraview"

// AssetHandler resolves auroraview://path requests under root.
type AssetHandler struct {
	root string
}

// NewAssetHandler constructs a handler rooted at root. root must be an
// absolute, existing directory; relative asset roots are rejected at
// config validation time, not here.
func NewAssetHandler(root string) *AssetHandler {
	return &AssetHandler{root: root}
}

// Resolve maps a scheme-relative request path to a file under the asset
// root, an HTTP-style status-equivalent error, and the file's content
// read into memory.
func (h *AssetHandler) Resolve(requestPath string) (body []byte, mimeType string, err error) {
	if h.root == "" {
		return nil, "", errors.New("protocol: asset_root not configured")
	}

	cleaned := filepath.Clean(strings.TrimPrefix(requestPath, "/"))
	full := filepath.Join(h.root, cleaned)

	rel, err := filepath.Rel(h.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		log.Warn("rejected traversal attempt: %s", requestPath)
		return nil, "", ErrForbidden
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, "", err
	}

	ext := filepath.Ext(full)
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return data, ct, nil
}
