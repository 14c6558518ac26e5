//go:build windows

package auroraview

import (
	"github.com/auroraview/auroraview/internal/pump"
	"github.com/auroraview/auroraview/internal/runtime"
)

func newPlatformPump(lifecycle *runtime.LifecycleManager, drainer pump.Drainer, maxTasks int, nativeHandle uintptr) pump.Policy {
	return pump.NewWindowsPolicy(nativeHandle, lifecycle, drainer, maxTasks)
}
