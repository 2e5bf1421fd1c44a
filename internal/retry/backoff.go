package retry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// FullJitterBackoff implements capped exponential backoff with full jitter.
//
// The wait after the first failure is exactly MinTimeout. After that, the wait
// following failed attempt i (i >= 1) is Backoff(i-1), a value drawn uniformly
// from [0, Ceiling(i-1)).
type FullJitterBackoff struct {
	cfg retrier.Config

	// jitterFunc provides random values [0, 1) (defaults to rand.Float64)
	jitterFunc func() float64
}

// BackoffOption is a functional option for configuring FullJitterBackoff.
type BackoffOption func(*FullJitterBackoff)

// WithJitterFunc sets a custom function for generating random jitter values.
// Values outside [0, 1) are clamped into that range.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *FullJitterBackoff) {
		b.jitterFunc = f
	}
}

// NewFullJitterBackoff creates a backoff strategy for an already validated config.
//
// Example:
//
//	cfg, _ := retrier.NewConfig(retrier.WithMaxAttempts(3))
//	backoff := retry.NewFullJitterBackoff(cfg)
func NewFullJitterBackoff(cfg retrier.Config, opts ...BackoffOption) *FullJitterBackoff {
	b := &FullJitterBackoff{
		cfg: cfg,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Ceiling returns min(MaxTimeout, MinTimeout * Multiplier^attempt).
// Negative attempts are treated as 0.
func (b *FullJitterBackoff) Ceiling(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	maxTimeout := b.cfg.MaxTimeout()
	growth := float64(b.cfg.MinTimeout()) * math.Pow(b.cfg.Multiplier(), float64(attempt))

	// NaN covers 0 * Inf when MinTimeout is zero and the power overflows.
	if math.IsNaN(growth) {
		return 0
	}
	if growth >= float64(maxTimeout) {
		return maxTimeout
	}
	return time.Duration(growth)
}

// Backoff returns a random duration in [0, Ceiling(attempt)).
// Returns 0 when the ceiling is 0.
func (b *FullJitterBackoff) Backoff(attempt int) time.Duration {
	ceiling := b.Ceiling(attempt)
	if ceiling <= 0 {
		return 0
	}

	d := time.Duration(b.random() * float64(ceiling))
	if d >= ceiling {
		d = ceiling - 1
	}
	return d
}

// NextDelay returns the wait after the given attempt failed.
func (b *FullJitterBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return b.cfg.MinTimeout()
	}
	return b.Backoff(attempt - 1)
}

// MaxAttempts returns the total number of attempts.
func (b *FullJitterBackoff) MaxAttempts() int {
	return b.cfg.MaxAttempts()
}

// Config returns the schedule this strategy was built from.
func (b *FullJitterBackoff) Config() retrier.Config {
	return b.cfg
}

func (b *FullJitterBackoff) random() float64 {
	jitterFunc := b.jitterFunc
	if jitterFunc == nil {
		// Default: real randomness for production use.
		// Tests should explicitly set jitterFunc to a deterministic function.
		jitterFunc = rand.Float64
	}

	r := jitterFunc()
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r >= 1:
		return math.Nextafter(1, 0)
	}
	return r
}
