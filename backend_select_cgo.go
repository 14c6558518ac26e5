//go:build webkit_cgo

package auroraview

import "github.com/auroraview/auroraview/internal/webkitgtk"

func selectBackend() webkitgtk.Backend {
	return webkitgtk.NewGtkBackend()
}
