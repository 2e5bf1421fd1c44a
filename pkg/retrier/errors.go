package retrier

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the terminal failure kinds.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := retry.Execute(ctx, fetch)
//	if errors.Is(err, retrier.ErrExhausted) {
//	    // every attempt failed
//	}
var (
	// ErrInvalidConfig indicates the retry configuration is invalid.
	ErrInvalidConfig = errors.New("invalid retry configuration")

	// ErrExhausted indicates every attempt in the budget failed.
	ErrExhausted = errors.New("retry attempts exhausted")

	// ErrAborted indicates the context was cancelled before the budget was used up.
	ErrAborted = errors.New("retry aborted")

	// ErrConnectionFailed indicates a probe could not reach its target.
	ErrConnectionFailed = errors.New("connection failed")
)

// ConfigError is a precondition violation detected before any attempt is made.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%s %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ExhaustedError is returned after MaxAttempts consecutive failures.
// Cause is the failure of the final attempt.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the cause of the final attempt.
func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// AbortedError is returned when the context ends while attempts remain.
// Err is the context error; LastErr is the most recent operation failure, if any.
type AbortedError struct {
	Attempts int
	Err      error
	LastErr  error
}

func (e *AbortedError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("retry aborted after %d attempts: %v (last error: %v)", e.Attempts, e.Err, e.LastErr)
	}
	return fmt.Sprintf("retry aborted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes both the context error and the last operation failure.
func (e *AbortedError) Unwrap() []error {
	if e.LastErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.LastErr}
}

// Is reports whether target is ErrAborted.
func (e *AbortedError) Is(target error) bool {
	return target == ErrAborted
}

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that executors stop retrying and return it unchanged.
// Returns nil for a nil error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent checks if an error was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrAborted),
		errors.Is(err, context.Canceled):
		return ExitAborted
	case errors.Is(err, ErrExhausted):
		return ExitExhausted
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the argument and flag errors produced by cobra.
func isUsageError(msg string) bool {
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	}
	for _, p := range usagePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
