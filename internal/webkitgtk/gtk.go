//go:build webkit_cgo

package webkitgtk

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/auroraview/auroraview/internal/logging"
	glib "github.com/diamondburned/gotk4/pkg/glib/v2"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"
	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
)

var log = logging.For("webkitgtk")

const messageHandlerName = "auroraview"

// GtkBackend is the real Backend implementation, backed by GTK4 and
// WebKitGTK via gotk4/gotk4-webkitgtk (spec §4.7). It owns the window and
// WebView for exactly one instance; construction, mutation, and
// destruction all happen on the GTK main thread (I1), which is the thread
// that called InitMainThread and is running glib.MainLoop.
type GtkBackend struct {
	mu       sync.Mutex
	win      *gtk.Window
	view     *webkit.WebView
	ucm      *webkit.UserContentManager
	protocol map[string]ProtocolHandler
}

// NewGtkBackend constructs a backend with no native widgets yet; Create
// builds them.
func NewGtkBackend() *GtkBackend {
	return &GtkBackend{protocol: make(map[string]ProtocolHandler)}
}

func (b *GtkBackend) Create(parentHandle uintptr, child bool, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	InitMainThread()

	win := gtk.NewWindow()
	win.SetDefaultSize(width, height)

	view := webkit.NewWebView()
	ucm := view.UserContentManager()
	if ucm == nil {
		return fmt.Errorf("webkitgtk: UserContentManager unavailable")
	}
	if !ucm.RegisterScriptMessageHandler(messageHandlerName, "") {
		log.Warn("RegisterScriptMessageHandler(%s) failed", messageHandlerName)
	}

	win.SetChild(view)

	b.win, b.view, b.ucm = win, view, ucm

	if parentHandle != 0 {
		log.Debug("Create: parent=%#x child=%v — owner/child relationship is established by the host binding via the platform window handle, not gotk4", parentHandle, child)
	}
	return nil
}

func (b *GtkBackend) LoadURL(url string) error {
	b.mu.Lock()
	view := b.view
	b.mu.Unlock()
	if view == nil {
		return errNotImplemented
	}
	view.LoadURI(url)
	return nil
}

func (b *GtkBackend) LoadHTML(html, baseURL string) error {
	b.mu.Lock()
	view := b.view
	b.mu.Unlock()
	if view == nil {
		return errNotImplemented
	}
	view.LoadHTML(html, baseURL)
	return nil
}

func (b *GtkBackend) SetTitle(title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == nil {
		return errNotImplemented
	}
	b.win.SetTitle(title)
	return nil
}

func (b *GtkBackend) SetSize(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == nil {
		return errNotImplemented
	}
	b.win.SetDefaultSize(width, height)
	return nil
}

func (b *GtkBackend) Show() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == nil {
		return errNotImplemented
	}
	b.win.Show()
	return nil
}

func (b *GtkBackend) Hide() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == nil {
		return errNotImplemented
	}
	b.win.Hide()
	return nil
}

func (b *GtkBackend) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win == nil {
		return nil
	}
	b.win.Destroy()
	b.win, b.view, b.ucm = nil, nil, nil
	return nil
}

func (b *GtkBackend) EvalJS(script string) error {
	b.mu.Lock()
	view := b.view
	b.mu.Unlock()
	if view == nil {
		return errNotImplemented
	}
	view.EvaluateJavaScript(script, -1, "", "", nil, nil)
	return nil
}

// AddInitScript installs script so it runs at document-start on every
// subsequent navigation, before any page script (spec §4.7,
// "add_init_script ... applied before every document load").
func (b *GtkBackend) AddInitScript(script string) error {
	b.mu.Lock()
	ucm := b.ucm
	b.mu.Unlock()
	if ucm == nil {
		return errNotImplemented
	}
	ucm.AddScript(webkit.NewUserScript(
		script,
		webkit.UserContentInjectAllFrames,
		webkit.UserScriptInjectAtDocumentStart,
		nil,
		nil,
	))
	return nil
}

// SubscribeIPC wires the single "auroraview" script message handler
// registered in Create to callback.
func (b *GtkBackend) SubscribeIPC(callback func(payload string)) {
	b.mu.Lock()
	ucm := b.ucm
	b.mu.Unlock()
	if ucm == nil || callback == nil {
		return
	}
	ucm.ConnectScriptMessageReceived(messageHandlerName, func(result *webkit.JavascriptResult) {
		callback(result.ToString())
	})
}

// RegisterProtocol installs a handler for a custom resource scheme, routed
// through WebKit's URI scheme request API.
func (b *GtkBackend) RegisterProtocol(scheme string, handler ProtocolHandler) error {
	b.mu.Lock()
	b.protocol[scheme] = handler
	b.mu.Unlock()

	webkit.WebContextGetDefault().RegisterURIScheme(scheme, func(req *webkit.URISchemeRequest) {
		path := req.Path()
		body, mimeType, err := handler(path)
		if err != nil {
			req.FinishError(err)
			return
		}
		req.FinishWithData(body, mimeType)
	})
	return nil
}

func (b *GtkBackend) NativeHandle() uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view == nil {
		return 0
	}
	return b.view.Native()
}

var (
	mainLoop      *glib.MainLoop
	mainThreadSet bool
)

// InitMainThread locks the current goroutine to its OS thread, required
// before any GTK call (spec I1: the widget is created, mutated, and
// destroyed on exactly one thread).
func InitMainThread() {
	if !mainThreadSet {
		glib.IdleAdd(func() bool { return false }) // touch glib before LockOSThread for clarity in traces
		runtime.LockOSThread()
		mainThreadSet = true
	}
}

// RunMainLoop blocks running the GTK main loop until QuitMainLoop is
// called. Instance's standalone RunModes do not call it; they tick from
// their own channel-based loop.
func RunMainLoop() {
	InitMainThread()
	if mainLoop == nil {
		mainLoop = glib.NewMainLoop(glib.MainContextDefault(), false)
	}
	mainLoop.Run()
}

// QuitMainLoop stops the GTK main loop started by RunMainLoop.
func QuitMainLoop() {
	if mainLoop != nil {
		mainLoop.Quit()
	}
}

// IdleProxy adapts glib.IdleAdd to queue.EventLoopProxy for
// StandaloneBlocking/StandaloneThreaded instances whose UI thread is the
// GTK main loop.
func IdleProxy(drain func()) func() {
	return func() {
		glib.IdleAdd(func() bool {
			drain()
			return false
		})
	}
}
