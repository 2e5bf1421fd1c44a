package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// Environment variables exported to every attempt of the child command.
const (
	EnvRunID   = "RETRIER_RUN_ID"
	EnvAttempt = "RETRIER_ATTEMPT"
)

// lockPollInterval is how often a held lock file is re-checked.
const lockPollInterval = 100 * time.Millisecond

// waitDelay bounds how long a killed child may keep its output pipes open.
const waitDelay = 2 * time.Second

// Command is an external program run once per attempt.
type Command struct {
	Name string
	Args []string

	// Env is appended to the current process environment.
	Env []string

	Stdout io.Writer
	Stderr io.Writer

	// AttemptTimeout kills an attempt that runs longer. Zero means no limit.
	AttemptTimeout time.Duration

	// LockFile, when set, is flock'ed for the whole run so that concurrent
	// runners using the same file execute one at a time.
	LockFile string
}

// Result summarizes a finished run.
type Result struct {
	RunID    string
	Attempts int
	// ExitCode of the last attempt, or -1 when it never started or was killed.
	ExitCode int
}

// AttemptError is a failed attempt: non-zero exit or a killed process.
type AttemptError struct {
	Attempt  int
	ExitCode int
	Stderr   string
	Err      error
}

func (e *AttemptError) Error() string {
	msg := fmt.Sprintf("attempt %d: %v", e.Attempt, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// Runner executes commands under a retry schedule.
type Runner struct {
	cfg     retrier.Config
	logger  retrier.Logger
	onRetry func(attempt int, err error, delay time.Duration)
	newID   func() string
}

// New creates a Runner. A nil logger discards messages.
func New(cfg retrier.Config, logger retrier.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger, newID: uuid.NewString}
}

// WithOnRetry returns a copy of the runner that calls fn before each wait.
func (r *Runner) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Runner {
	clone := *r
	clone.onRetry = fn
	return &clone
}

// Run executes cmd until it exits 0, the schedule is used up, or ctx ends.
// A missing executable is not retried.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	result := Result{RunID: r.newID(), ExitCode: -1}

	if cmd.Name == "" {
		return result, &retrier.ConfigError{Field: "command", Value: "", Reason: "must not be empty"}
	}

	if cmd.LockFile != "" {
		unlock, err := acquireLock(ctx, cmd.LockFile, r.logger)
		if err != nil {
			return result, err
		}
		defer unlock()
	}

	executor := retry.NewExecutor(retry.AlwaysTransient(), retry.NewFullJitterBackoff(r.cfg), r.logger)
	if r.onRetry != nil {
		executor = executor.WithOnRetry(r.onRetry)
	}

	err := executor.Execute(ctx, func(ctx context.Context) error {
		result.Attempts++
		code, err := r.runOnce(ctx, cmd, result.RunID, result.Attempts)
		result.ExitCode = code
		return err
	})

	r.verbose("run %s finished after %d attempt(s), exit code %d", result.RunID, result.Attempts, result.ExitCode)
	return result, err
}

func (r *Runner) runOnce(ctx context.Context, cmd Command, runID string, attempt int) (int, error) {
	if cmd.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.AttemptTimeout)
		defer cancel()
	}

	tail := newTailBuffer(retrier.MaxErrorPreviewLength)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = append(os.Environ(), cmd.Env...)
	c.Env = append(c.Env, EnvRunID+"="+runID, EnvAttempt+"="+strconv.Itoa(attempt))
	c.Stdout = cmd.Stdout
	c.Stderr = tail
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(cmd.Stderr, tail)
	}
	c.WaitDelay = waitDelay

	r.verbose("attempt %d: %s", attempt, c.String())

	err := c.Run()
	if err == nil {
		return 0, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return -1, retrier.Permanent(fmt.Errorf("cannot start %s: %w", cmd.Name, err))
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}

	return code, &AttemptError{Attempt: attempt, ExitCode: code, Stderr: tail.String(), Err: err}
}

func (r *Runner) verbose(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Verbose(format, args...)
	}
}

// acquireLock blocks until the lock file is held or ctx ends.
func acquireLock(ctx context.Context, path string, logger retrier.Logger) (func(), error) {
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		if logger != nil {
			logger.Info("waiting for lock %s", path)
		}
		locked, err = lock.TryLockContext(ctx, lockPollInterval)
		if err != nil {
			return nil, &retrier.AbortedError{Attempts: 0, Err: err}
		}
		if !locked {
			return nil, fmt.Errorf("failed to lock %s", path)
		}
	}

	return func() {
		lock.Unlock() //nolint:errcheck
	}, nil
}
