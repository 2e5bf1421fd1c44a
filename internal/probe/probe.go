package probe

import (
	"context"
	"time"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// Probe is a single readiness check against an external dependency.
type Probe interface {
	// Name describes the target for log lines. Never includes secrets.
	Name() string

	// Check performs one attempt. A nil error means the target is ready.
	Check(ctx context.Context) error

	// Classifier decides which Check failures are worth another attempt.
	Classifier() retrier.ErrorClassifier
}

// WaitOptions tunes Wait beyond the retry schedule.
type WaitOptions struct {
	// AttemptTimeout bounds each Check. Zero disables the per-attempt deadline.
	AttemptTimeout time.Duration

	Logger retrier.Logger

	// OnRetry runs before each wait, with the zero-based index of the failed attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Wait checks p until it succeeds, the schedule in cfg is used up, or ctx ends.
// On success it returns the number of attempts that were needed.
func Wait(ctx context.Context, p Probe, cfg retrier.Config, opts WaitOptions) (int, error) {
	executor := retry.NewExecutor(p.Classifier(), retry.NewFullJitterBackoff(cfg), opts.Logger)
	if opts.OnRetry != nil {
		executor = executor.WithOnRetry(opts.OnRetry)
	}

	attempts := 0
	err := executor.Execute(ctx, func(ctx context.Context) error {
		attempts++
		if opts.AttemptTimeout <= 0 {
			return p.Check(ctx)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
		defer cancel()
		return p.Check(attemptCtx)
	})
	if err != nil {
		return attempts, err
	}

	if opts.Logger != nil {
		opts.Logger.Info("%s is ready after %d attempt(s)", p.Name(), attempts)
	}
	return attempts, nil
}
