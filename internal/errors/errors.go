package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the process was interrupted (e.g., SIGINT).
)

// Messages carried by the sequence domain errors. They are part of the HTTP
// contract: the adapter returns them verbatim as the response body.
const (
	MsgClientNotFound   = "Client does not exist"
	MsgBackLimitReached = "Back limit reached"
)

var (
	// ErrClientNotFound is the sentinel matched by ClientNotFoundError.
	ErrClientNotFound = errors.New(MsgClientNotFound)
	// ErrBackLimitReached is the sentinel matched by BackLimitError.
	ErrBackLimitReached = errors.New(MsgBackLimitReached)
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ClientNotFoundError is returned when an operation needs the state of a
// client that has never advanced its sequence.
type ClientNotFoundError struct {
	// ClientID is the identifier that was looked up.
	ClientID string
}

// Error returns the canonical "Client does not exist" message.
func (e ClientNotFoundError) Error() string { return MsgClientNotFound }

// Is reports whether target is ErrClientNotFound.
func (e ClientNotFoundError) Is(target error) bool { return target == ErrClientNotFound }

// BackLimitError is returned when a client cannot step back any further:
// either it sits on the first element or it has no sequence at all.
type BackLimitError struct {
	// ClientID is the identifier that tried to step back.
	ClientID string
}

// Error returns the canonical "Back limit reached" message.
func (e BackLimitError) Error() string { return MsgBackLimitReached }

// Is reports whether target is ErrBackLimitReached.
func (e BackLimitError) Is(target error) bool { return target == ErrBackLimitReached }

// IsDomainError reports whether err is a sequence domain failure, i.e. a
// client-side mistake the HTTP layer answers with 400 Bad Request.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrBackLimitReached)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
