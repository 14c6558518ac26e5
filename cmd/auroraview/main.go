// Command auroraview is a standalone host and diagnostic harness around the
// auroraview Instance API. Real embedders (DCC plugins, desktop apps) link
// the auroraview package directly; this binary exists to exercise every
// RunMode from the command line without a host process.
package main

import (
	"runtime"

	"github.com/auroraview/auroraview/internal/cli/cmd"
)

// Build-time variables, set via -ldflags "-X main.version=... -X main.commit=... -X main.buildDate=...".
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// WebKitGTK (and the GTK main loop it needs) requires every call to
	// originate from the same OS thread.
	runtime.LockOSThread()

	cmd.SetBuildInfo(version, commit, buildDate)
	cmd.Execute()
}
