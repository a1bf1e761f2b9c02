package errors

import "fmt"

var (
	// ErrValidation marks an inbound request or event missing required
	// addressing fields. The action is dropped without mutating state.
	ErrValidation = fmt.Errorf("missing required information")
	// ErrStoreUnavailable marks a failed persistence call. Request-driven
	// callers surface it; the relay degrades to unenriched delivery.
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
	ErrNotFound         = fmt.Errorf("not found")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)
