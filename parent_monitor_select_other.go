//go:build !windows

package auroraview

import "github.com/auroraview/auroraview/internal/pump"

// newParentMonitor has no native parent-liveness primitive to poll outside
// Win32 (X11/Wayland embedding has no equivalent of IsWindow). Parent death
// is instead expected to surface as a host-initiated Close on these
// platforms.
func newParentMonitor(parentHandle uintptr) *pump.ParentMonitor {
	return nil
}
