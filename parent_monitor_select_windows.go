//go:build windows

package auroraview

import (
	"time"

	"github.com/auroraview/auroraview/internal/pump"
)

// newParentMonitor polls IsWindow on the embedding parent HWND, the
// fallback path for detecting parent-closed when the host doesn't forward
// a WM_PARENTNOTIFY-style signal itself (spec §4.5).
func newParentMonitor(parentHandle uintptr) *pump.ParentMonitor {
	if parentHandle == 0 {
		return nil
	}
	return pump.NewParentMonitor(func() bool {
		return pump.IsWindowAlive(parentHandle)
	}, 250*time.Millisecond)
}
