//go:build !webkit_cgo

package webkitgtk

import (
	"sync/atomic"

	"github.com/auroraview/auroraview/internal/logging"
)

var log = logging.For("webkitgtk")

var stubHandleCounter uint64

// StubBackend satisfies Backend without a native WebKitGTK widget. It lets
// the runtime core, IPC bridge, and pump policy all be exercised (tests,
// IpcOnlyHeadless mode) on a machine without GTK development headers.
// Build with -tags=webkit_cgo for the real window.
type StubBackend struct {
	handle       uintptr
	url          string
	html         string
	title        string
	width        int
	height       int
	destroyed    bool
	ipcCallback  func(payload string)
	initScripts  []string
}

// NewStubBackend constructs a StubBackend. It does not yet hold a handle;
// Create assigns one, mirroring the real backend's creation semantics.
func NewStubBackend() *StubBackend {
	return &StubBackend{}
}

func nextStubHandle() uintptr {
	return uintptr(atomic.AddUint64(&stubHandleCounter, 1))
}

func (b *StubBackend) Create(parentHandle uintptr, child bool, width, height int) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.handle = nextStubHandle()
	b.width, b.height = width, height
	log.Debug("Create (stub): parent=%#x child=%v size=%dx%d — no native window will appear", parentHandle, child, width, height)
	return nil
}

func (b *StubBackend) LoadURL(url string) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.url = url
	log.Debug("LoadURL (stub): %s", url)
	return nil
}

func (b *StubBackend) LoadHTML(html, baseURL string) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.html = html
	log.Debug("LoadHTML (stub): %d bytes, base=%s", len(html), baseURL)
	return nil
}

func (b *StubBackend) SetTitle(title string) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.title = title
	return nil
}

func (b *StubBackend) SetSize(width, height int) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.width, b.height = width, height
	return nil
}

func (b *StubBackend) Show() error {
	if b.destroyed {
		return errNotImplemented
	}
	return nil
}

func (b *StubBackend) Hide() error {
	if b.destroyed {
		return errNotImplemented
	}
	return nil
}

func (b *StubBackend) Destroy() error {
	b.destroyed = true
	return nil
}

func (b *StubBackend) EvalJS(script string) error {
	if b.destroyed {
		return errNotImplemented
	}
	log.Debug("EvalJS (stub): %d bytes", len(script))
	return nil
}

func (b *StubBackend) AddInitScript(script string) error {
	if b.destroyed {
		return errNotImplemented
	}
	b.initScripts = append(b.initScripts, script)
	return nil
}

func (b *StubBackend) SubscribeIPC(callback func(payload string)) {
	b.ipcCallback = callback
}

// DeliverIPC simulates the page posting a message to the host. Exercised
// by tests that need an IPC round trip without a real widget.
func (b *StubBackend) DeliverIPC(payload string) {
	if b.ipcCallback != nil {
		b.ipcCallback(payload)
	}
}

func (b *StubBackend) RegisterProtocol(scheme string, handler ProtocolHandler) error {
	log.Debug("RegisterProtocol (stub): %s", scheme)
	return nil
}

func (b *StubBackend) NativeHandle() uintptr {
	return b.handle
}

// URL returns the most recently loaded URL, for tests exercising a full
// Instance without a native widget.
func (b *StubBackend) URL() string { return b.url }

// HTML returns the most recently loaded inline HTML body.
func (b *StubBackend) HTML() string { return b.html }

// Title returns the most recently set window title.
func (b *StubBackend) Title() string { return b.title }
