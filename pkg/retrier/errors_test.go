package retrier_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/pkg/retrier"
)

func TestExitCodeForError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, retrier.ExitSuccess},
		{"general error", errors.New("something went wrong"), retrier.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --foo"), retrier.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), retrier.ExitUsageError},
		{"config error", &retrier.ConfigError{Field: "max_timeout", Value: "-1ms", Reason: "must not be negative"}, retrier.ExitConfigError},
		{"exhausted", &retrier.ExhaustedError{Attempts: 3, Cause: cause}, retrier.ExitExhausted},
		{"wrapped exhausted", fmt.Errorf("exec: %w", &retrier.ExhaustedError{Attempts: 1, Cause: cause}), retrier.ExitExhausted},
		{"aborted", &retrier.AbortedError{Attempts: 2, Err: context.Canceled, LastErr: cause}, retrier.ExitAborted},
		{"bare cancellation", context.Canceled, retrier.ExitAborted},
		{"connection failed", retrier.ErrConnectionFailed, retrier.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), retrier.ExitConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retrier.ExitCodeForError(tt.err))
		})
	}
}

func TestExhaustedError_WrapsCause(t *testing.T) {
	cause := errors.New("last failure")
	err := error(&retrier.ExhaustedError{Attempts: 4, Cause: cause})

	assert.ErrorIs(t, err, retrier.ErrExhausted)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, retrier.ErrAborted)
	assert.Equal(t, "retry failed after 4 attempts: last failure", err.Error())

	var exhausted *retrier.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Same(t, cause, exhausted.Cause)
}

func TestAbortedError_MatchesContextAndCause(t *testing.T) {
	cause := errors.New("still down")
	err := error(&retrier.AbortedError{Attempts: 2, Err: context.DeadlineExceeded, LastErr: cause})

	assert.ErrorIs(t, err, retrier.ErrAborted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, retrier.ErrExhausted)
	assert.Contains(t, err.Error(), "last error: still down")

	bare := &retrier.AbortedError{Attempts: 0, Err: context.Canceled}
	assert.Equal(t, "retry aborted after 0 attempts: context canceled", bare.Error())
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, retrier.Permanent(nil))

	cause := errors.New("bad request")
	err := fmt.Errorf("call: %w", retrier.Permanent(cause))

	assert.True(t, retrier.IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, retrier.IsPermanent(cause))
}
