package webkitgtk

import "errors"

// errNotImplemented is returned by the stub backend's operations once the
// widget has been destroyed, or (in the non-cgo build) in lieu of any
// native behavior.
var errNotImplemented = errors.New("webkitgtk: not implemented")
