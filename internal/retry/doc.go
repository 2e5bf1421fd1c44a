// Package retry provides bounded retry logic with capped exponential backoff
// and full jitter.
//
// The package supports pluggable error classification and backoff strategies.
//
// # Example Usage
//
//	body, err := retry.Execute(ctx, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx)
//	}, retrier.WithMaxAttempts(3))
//
// For finer control, build an Executor:
//
//	cfg, err := retrier.NewConfig(retrier.WithMinTimeout(200 * time.Millisecond))
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewFullJitterBackoff(cfg), logger)
//	err = executor.Execute(ctx, connect)
//
// # Schedule
//
// The first attempt runs immediately. After attempt i fails (and attempts
// remain) the executor waits: MinTimeout after the first failure, then a
// value drawn uniformly from [0, min(MaxTimeout, MinTimeout*Multiplier^(i-1))).
// MaxAttempts tries therefore wait at most MaxAttempts-1 times.
//
// # Errors
//
// Exhausting the budget yields *retrier.ExhaustedError wrapping the final
// failure. Cancelling the context yields *retrier.AbortedError. Errors the
// classifier rejects, or that are marked with retrier.Permanent, are returned
// unchanged after the first occurrence.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. WithOnRetry() and
// WithLogger() create independent copies.
package retry
