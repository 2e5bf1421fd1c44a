package retry

import (
	"context"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithOnRetry() and WithLogger() return a NEW instance, so each goroutine
// can have its own configuration without shared state.
type Executor struct {
	classifier retrier.ErrorClassifier
	strategy   retrier.BackoffStrategy
	logger     retrier.Logger
	onRetry    func(attempt int, err error, delay time.Duration)
}

// attemptState is the per-call bookkeeping; it never outlives Execute.
type attemptState struct {
	index   int
	timeout time.Duration
	lastErr error
}

// NewExecutor creates a new retry executor with the given configuration.
// A nil logger discards messages.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier retrier.ErrorClassifier,
	strategy retrier.BackoffStrategy,
	logger retrier.Logger,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		logger:     logger,
	}
}

// WithOnRetry returns a new Executor with the specified retry callback.
// The callback runs after attempt failed and before the executor waits delay.
//
// This method does NOT modify the receiver; it returns a new instance.
//
// Example:
//
//	executor := retry.NewExecutor(classifier, strategy, nil)
//	executor1 := executor.WithOnRetry(callback1) // New instance
//	executor2 := executor.WithOnRetry(callback2) // Another new instance
//	// executor1 and executor2 are independent
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// WithLogger returns a new Executor that reports swallowed failures to logger.
func (e *Executor) WithLogger(logger retrier.Logger) *Executor {
	clone := *e
	clone.logger = logger
	return &clone
}

// MaxAttempts returns the attempt budget of the underlying strategy.
func (e *Executor) MaxAttempts() int {
	return e.strategy.MaxAttempts()
}

// Execute runs the operation until it succeeds or the attempt budget is used up.
//
// Returns nil on success, *retrier.ExhaustedError when every attempt failed,
// *retrier.AbortedError when ctx ends first, and the operation's own error,
// unchanged, when it is classified as non-transient.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.strategy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	state := attemptState{timeout: e.strategy.NextDelay(0)}

	for state.index = 0; state.index < maxAttempts; state.index++ {
		// Check context cancellation before every attempt
		if err := ctx.Err(); err != nil {
			return &retrier.AbortedError{Attempts: state.index, Err: err, LastErr: state.lastErr}
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		state.lastErr = err

		// Cancellation while the attempt ran wins over classification and exhaustion.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &retrier.AbortedError{Attempts: state.index + 1, Err: ctxErr, LastErr: err}
		}

		if retrier.IsPermanent(err) || !e.classifier.IsTransient(err) {
			e.verbose("attempt %d/%d failed with non-retryable error: %v", state.index+1, maxAttempts, err)
			return err
		}

		// No wait after the final attempt
		if state.index == maxAttempts-1 {
			break
		}

		e.verbose("attempt %d/%d failed: %v (retrying in %v)", state.index+1, maxAttempts, err, state.timeout)

		if e.onRetry != nil {
			e.onRetry(state.index, err, state.timeout)
		}

		if err := sleep(ctx, state.timeout); err != nil {
			return &retrier.AbortedError{Attempts: state.index + 1, Err: err, LastErr: state.lastErr}
		}

		state.timeout = e.strategy.NextDelay(state.index + 1)
	}

	if e.logger != nil {
		e.logger.Error("giving up after %d attempts: %v", maxAttempts, state.lastErr)
	}
	return &retrier.ExhaustedError{Attempts: maxAttempts, Cause: state.lastErr}
}

func (e *Executor) verbose(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Verbose(format, args...)
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs a value-producing operation through the executor.
// The zero value of T is returned alongside any error.
func Do[T any](ctx context.Context, e *Executor, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := operation(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Execute validates opts, then runs operation with full-jitter backoff,
// retrying every failure except those marked with retrier.Permanent.
//
// A *retrier.ConfigError is returned without invoking operation.
//
// Example:
//
//	body, err := retry.Execute(ctx, fetch,
//	    retrier.WithMaxAttempts(3),
//	    retrier.WithMinTimeout(100*time.Millisecond),
//	)
func Execute[T any](ctx context.Context, operation func(ctx context.Context) (T, error), opts ...retrier.Option) (T, error) {
	cfg, err := retrier.NewConfig(opts...)
	if err != nil {
		var zero T
		return zero, err
	}

	executor := NewExecutor(AlwaysTransient(), NewFullJitterBackoff(cfg), nil)
	return Do(ctx, executor, operation)
}
