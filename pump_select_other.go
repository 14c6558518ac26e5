//go:build !windows

package auroraview

import (
	"github.com/auroraview/auroraview/internal/pump"
	"github.com/auroraview/auroraview/internal/runtime"
)

func newPlatformPump(lifecycle *runtime.LifecycleManager, drainer pump.Drainer, maxTasks int, _ uintptr) pump.Policy {
	return pump.NewGenericPolicy(lifecycle, drainer, maxTasks)
}
