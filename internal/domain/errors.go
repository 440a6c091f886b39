package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by a render. Callers map them to transport failures with errors.Is.
var (
	// ErrUnknownGraphType is returned when no renderer is registered for a graph type.
	ErrUnknownGraphType = errors.New("unknown graph type")

	// ErrAuth is returned for a missing or invalid user identity, or missing admin rights.
	ErrAuth = errors.New("not authorized")

	// ErrInvalidArgument is returned for a non-permitted day window or bad indicator parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when a renderer breaks a pipeline invariant.
	ErrInvalidState = errors.New("invalid state")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidState wraps ErrInvalidState with a formatted message.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// AuthError wraps ErrAuth with a formatted message.
func AuthError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuth, fmt.Sprintf(format, args...))
}
