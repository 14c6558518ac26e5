// Package runtime implements the core state machine shared by every
// embedding mode: the frozen configuration model, the run-mode resolver,
// the window lifecycle manager, and the task variants that flow through
// the message queue. It has no knowledge of any concrete widget backend.
package runtime

import "fmt"

// ErrorKind identifies the category of a runtime Error, mirroring the
// taxonomy surfaced to JS callers and host bindings alike.
type ErrorKind int

const (
	// ErrIllegalForMode means the API called is not valid for the current RunMode.
	ErrIllegalForMode ErrorKind = iota
	// ErrIllegalThread means a widget operation was attempted off the UI thread.
	ErrIllegalThread
	// ErrInvalidState means the operation targets a Destroyed instance or ran before required init.
	ErrInvalidState
	// ErrDeferredPending is informational: the operation was buffered rather than applied.
	ErrDeferredPending
	// ErrClosed means the task was dropped because the instance moved past CloseRequested.
	ErrClosed
	// ErrCancelled means the reply channel was cancelled by a close transition.
	ErrCancelled
	// ErrTimeout means an IPC call exceeded its deadline.
	ErrTimeout
	// ErrMethodNotFound means no handler is registered for the requested method.
	ErrMethodNotFound
	// ErrInvalidArguments means the handler rejected the call's arguments.
	ErrInvalidArguments
	// ErrHandlerError wraps an error or panic raised by a host handler.
	ErrHandlerError
	// ErrWidgetError means the backend widget returned an error.
	ErrWidgetError
	// ErrPlatformError means an OS call (window creation, message dispatch) failed.
	ErrPlatformError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIllegalForMode:
		return "IllegalForMode"
	case ErrIllegalThread:
		return "IllegalThread"
	case ErrInvalidState:
		return "InvalidState"
	case ErrDeferredPending:
		return "DeferredPending"
	case ErrClosed:
		return "Closed"
	case ErrCancelled:
		return "Cancelled"
	case ErrTimeout:
		return "Timeout"
	case ErrMethodNotFound:
		return "MethodNotFound"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrHandlerError:
		return "HandlerError"
	case ErrWidgetError:
		return "WidgetError"
	case ErrPlatformError:
		return "PlatformError"
	default:
		return "Unknown"
	}
}

// Error is the uniform error type returned by the core and surfaced to JS
// as {kind, detail}.
type Error struct {
	Kind   ErrorKind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs an Error with a formatted detail message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapError constructs an Error that wraps an underlying cause.
func WrapError(kind ErrorKind, cause error) *Error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if err == nil {
		return false
	}
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	return e.Kind == kind
}
