package probe

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/internal/retry"
	"github.com/vvka-141/retrier/pkg/retrier"
)

type fakeProbe struct {
	calls     atomic.Int32
	failUntil int32
	err       error
	check     func(ctx context.Context) error
}

func (f *fakeProbe) Name() string { return "fake" }

func (f *fakeProbe) Check(ctx context.Context) error {
	n := f.calls.Add(1)
	if f.check != nil {
		return f.check(ctx)
	}
	if n <= f.failUntil {
		return f.err
	}
	return nil
}

func (f *fakeProbe) Classifier() retrier.ErrorClassifier { return retry.AlwaysTransient() }

func fastConfig(t *testing.T, attempts int) retrier.Config {
	t.Helper()
	cfg, err := retrier.NewConfig(
		retrier.WithMaxAttempts(attempts),
		retrier.WithMinTimeout(time.Millisecond),
		retrier.WithMaxTimeout(5*time.Millisecond),
	)
	require.NoError(t, err)
	return cfg
}

func TestWait_SucceedsAfterFailures(t *testing.T) {
	p := &fakeProbe{failUntil: 2, err: errors.New("not yet")}

	var retries []int
	attempts, err := Wait(context.Background(), p, fastConfig(t, 5), WaitOptions{
		Logger: logging.NewNullLogger(),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			retries = append(retries, attempt)
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestWait_Exhausted(t *testing.T) {
	cause := errors.New("down")
	p := &fakeProbe{failUntil: 100, err: cause}

	attempts, err := Wait(context.Background(), p, fastConfig(t, 3), WaitOptions{})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	var exhausted *retrier.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, cause)
}

func TestWait_AttemptTimeout(t *testing.T) {
	p := &fakeProbe{check: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	_, err := Wait(context.Background(), p, fastConfig(t, 2), WaitOptions{AttemptTimeout: 10 * time.Millisecond})

	assert.ErrorIs(t, err, retrier.ErrExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestWait_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &fakeProbe{check: func(context.Context) error {
		cancel()
		return errors.New("refused")
	}}

	_, err := Wait(ctx, p, fastConfig(t, 5), WaitOptions{})

	assert.ErrorIs(t, err, retrier.ErrAborted)
	assert.Equal(t, retrier.ExitAborted, retrier.ExitCodeForError(err))
}
