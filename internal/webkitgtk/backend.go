// Package webkitgtk adapts WebKitGTK (via gotk4-webkitgtk) to the core's
// WidgetBackend contract (spec §4.7). The core consumes this interface and
// never reaches past it into GTK specifics; a WebView2 or WKWebView
// backend would satisfy the identical contract.
package webkitgtk

// Backend is the narrow contract the runtime core uses to talk to the
// concrete WebView widget (spec §4.7). Any implementation satisfying it is
// acceptable; the core must never leak backend specifics through its
// public surface.
type Backend interface {
	Create(parentHandle uintptr, child bool, width, height int) error
	LoadURL(url string) error
	LoadHTML(html, baseURL string) error
	SetTitle(title string) error
	SetSize(width, height int) error
	Show() error
	Hide() error
	Destroy() error

	EvalJS(script string) error
	AddInitScript(script string) error

	// SubscribeIPC registers the callback invoked on the UI thread when the
	// page posts a message to the host.
	SubscribeIPC(callback func(payload string))

	// RegisterProtocol installs a handler for a custom resource scheme.
	RegisterProtocol(scheme string, handler ProtocolHandler) error

	// NativeHandle returns the platform window/view handle, or 0 before
	// Create or once the handle has no meaning (non-cgo stub).
	NativeHandle() uintptr
}

// ProtocolHandler resolves a scheme-relative path to a response body and
// MIME type, or returns an error to surface as a failed load.
type ProtocolHandler func(path string) (body []byte, mimeType string, err error)
