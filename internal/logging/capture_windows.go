//go:build windows

package logging

// OutputCapture is a no-op on Windows: there is no cheap Dup3-style fd
// swap, and WebView2 does not write stray C-level output to stdout/stderr
// the way WebKitGTK can. Kept as a symmetric type so callers don't need
// build tags of their own.
type OutputCapture struct {
	started bool
}

func NewOutputCapture(_ *Logger) *OutputCapture {
	return &OutputCapture{}
}

func (c *OutputCapture) Start() error {
	c.started = true
	return nil
}

func (c *OutputCapture) Stop() {
	c.started = false
}
