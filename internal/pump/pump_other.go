//go:build !windows

package pump

import (
	"github.com/auroraview/auroraview/internal/logging"
	"github.com/auroraview/auroraview/internal/runtime"
)

var log = logging.For("pump")

// GenericPolicy is the stub Policy for platforms without a Windows-style
// message pump (macOS/Linux). It shares the exact trait surface as
// WindowsPolicy and must honor I1/I5 once filled in with a real
// NSRunLoop/GLib main-context pump (spec §4.5: "macOS and Linux
// implementations are stubs with the same trait surface"). On these
// platforms the root package installs it for every RunMode, so each tick
// of every mode drains through it; it performs no native message
// classification.
type GenericPolicy struct {
	Base
}

// NewGenericPolicy constructs a GenericPolicy.
func NewGenericPolicy(lifecycle *runtime.LifecycleManager, queue Drainer, maxTasks int) *GenericPolicy {
	return &GenericPolicy{Base{Lifecycle: lifecycle, Queue: queue, MaxTasks: maxTasks}}
}

// ProcessEvents drains the message queue only; there is no OS message
// classification step on this platform yet (spec Open Questions).
func (p *GenericPolicy) ProcessEvents() bool {
	if p.Terminated() {
		return true
	}
	p.DrainQueue(func(runtime.Task) {})
	return p.Terminated()
}

// RequestDestroy has no post-destroy drain equivalent to perform here; the
// widget backend's own Destroy is responsible for releasing native
// resources on this platform.
func (p *GenericPolicy) RequestDestroy() {
	log.Debug("RequestDestroy: no native message pump to drain on this platform")
}
