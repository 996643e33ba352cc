// Package kerr enumerates the core's error taxonomy as sentinel values.
//
// Every failure the core surfaces to a caller wraps one of these with
// errors.Is-compatible %w formatting, per spec §7.
package kerr

import "errors"

var (
	// ErrUnknownNode is returned when a Tree Session Store operation references
	// a node identifier that does not exist.
	ErrUnknownNode = errors.New("koda: unknown node")

	// ErrInvalidSource is returned when synthesized extension source fails to
	// parse in the implementation language.
	ErrInvalidSource = errors.New("koda: invalid extension source")

	// ErrExtensionNotFound is returned when load/execute targets an
	// unregistered extension name.
	ErrExtensionNotFound = errors.New("koda: extension not found")

	// ErrExtensionLoadFailed is returned when parse-valid source fails to load
	// or does not expose a usable capability.
	ErrExtensionLoadFailed = errors.New("koda: extension load failed")

	// ErrModelFailed is returned when the model adapter raised or returned
	// content that could not be parsed where structure was required.
	ErrModelFailed = errors.New("koda: model call failed")

	// ErrToolFailed marks a non-success tool adapter result. It is carried as
	// data (not propagated as a panic/exception) per §7.
	ErrToolFailed = errors.New("koda: tool call failed")

	// ErrPersistenceFailed is returned on session file I/O failure.
	ErrPersistenceFailed = errors.New("koda: persistence failed")

	// ErrCancelled is returned when a caller-supplied context is cancelled.
	ErrCancelled = errors.New("koda: cancelled")

	// ErrIterationExhausted is returned when the iteration cap is reached
	// without acceptance.
	ErrIterationExhausted = errors.New("koda: iteration budget exhausted")
)
