//go:build windows

package pump

import (
	"unsafe"

	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
	"golang.org/x/sys/windows"
)

var log = logging.For("pump")

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procIsWindow           = user32.NewProc("IsWindow")
	procPostMessageW       = user32.NewProc("PostMessageW")
)

const (
	pmRemove = 0x0001

	wmClose       = 0x0010
	wmDestroy     = 0x0002
	wmNCDestroy   = 0x0082
	wmSysCommand  = 0x0112
	wmNCLButtonUp = 0x00A2
	scClose       = 0xF060
	htClose       = 20
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsPolicy is the Policy implementation for HWND-based embedding
// (spec §4.5, the hardest case). It pumps only OwnHWND, never a global
// queue (I5), and drives the mandatory post-destroy drain loop.
type WindowsPolicy struct {
	Base
	OwnHWND uintptr
}

// NewWindowsPolicy constructs a WindowsPolicy bound to the instance's own
// window handle.
func NewWindowsPolicy(ownHWND uintptr, lifecycle *runtime.LifecycleManager, queue Drainer, maxTasks int) *WindowsPolicy {
	return &WindowsPolicy{
		Base:    Base{Lifecycle: lifecycle, Queue: queue, MaxTasks: maxTasks},
		OwnHWND: ownHWND,
	}
}

// ProcessEvents implements Policy. It is the own_hwnd-filtered PeekMessage
// loop followed by the queue drain (spec §4.5 step 1 and 2).
func (p *WindowsPolicy) ProcessEvents() bool {
	if p.Terminated() {
		return true
	}

	for i := 0; i < maxPumpIterationsPerTick; i++ {
		var m msg
		got, _, _ := procPeekMessageW.Call(
			uintptr(unsafe.Pointer(&m)),
			p.OwnHWND,
			0, 0,
			pmRemove,
		)
		if got == 0 {
			break
		}
		p.classifyCloseSource(m.message, m.wParam)
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	p.DrainQueue(func(runtime.Task) {})
	return p.Terminated()
}

// classifyCloseSource maps the Windows close-intent messages to a
// LifecycleManager.RequestClose call (spec §4.5).
func (p *WindowsPolicy) classifyCloseSource(message uint32, wParam uintptr) {
	switch message {
	case wmClose:
		p.Lifecycle.RequestClose(runtime.UserRequest)
	case wmSysCommand:
		if wParam&0xFFF0 == scClose {
			p.Lifecycle.RequestClose(runtime.UserRequest)
		}
	case wmNCLButtonUp:
		if wParam == htClose {
			p.Lifecycle.RequestClose(runtime.UserRequest)
		}
	case wmDestroy:
		p.Lifecycle.RequestClose(runtime.UserRequest)
	}
}

// RequestDestroy implements Policy. It posts WM_CLOSE then enters the
// post-destroy drain loop: without it, WM_DESTROY/WM_NCDESTROY queue up
// with nothing pumping to deliver them, and the window visually remains
// after close in host-embedded mode.
func (p *WindowsPolicy) RequestDestroy() {
	procPostMessageW.Call(p.OwnHWND, wmClose, 0, 0)

	sawDestroy, sawNCDestroy := false, false
	for i := 0; i < maxPostDestroyIterations && !(sawDestroy && sawNCDestroy); i++ {
		var m msg
		got, _, _ := procPeekMessageW.Call(
			uintptr(unsafe.Pointer(&m)),
			p.OwnHWND,
			0, 0,
			pmRemove,
		)
		if got == 0 {
			continue
		}
		if m.message == wmDestroy {
			sawDestroy = true
		}
		if m.message == wmNCDestroy {
			sawNCDestroy = true
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	if !(sawDestroy && sawNCDestroy) {
		log.Warn("post-destroy drain exhausted %d iterations without seeing WM_DESTROY+WM_NCDESTROY for hwnd=%#x", maxPostDestroyIterations, p.OwnHWND)
	}
}

// IsWindowAlive polls IsWindow for the ParentMonitor fallback path used
// when subclassing the parent HWND is forbidden.
func IsWindowAlive(hwnd uintptr) bool {
	ok, _, _ := procIsWindow.Call(hwnd)
	return ok != 0
}
