package retrier

import "time"

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay between attempts.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait after the given attempt failed.
	// attempt is zero-indexed (0 = the first, immediate attempt).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the total number of attempts, including the first one.
	MaxAttempts() int
}
