package retrier

import (
	"math"
	"strconv"
	"time"
)

// Config describes a bounded retry schedule with exponential, fully jittered backoff.
//
// A Config is immutable once built. Use NewConfig to construct a validated
// value; the zero Config is not valid.
type Config struct {
	multiplier  float64
	maxTimeout  time.Duration
	maxAttempts int
	minTimeout  time.Duration
}

// Option is a functional option for NewConfig.
// Options that are not supplied keep their documented default.
type Option func(*Config)

// WithMultiplier sets the factor by which the backoff ceiling grows per attempt.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.multiplier = m
	}
}

// WithMaxTimeout caps every computed backoff.
func WithMaxTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.maxTimeout = d
	}
}

// WithMaxAttempts sets the total number of tries, including the first one.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.maxAttempts = n
	}
}

// WithMinTimeout sets the wait after the first failure and the base of the exponential growth.
func WithMinTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.minTimeout = d
	}
}

// DefaultConfig returns the default schedule: 5 attempts, 1s minimum timeout,
// 60s maximum timeout, multiplier 2.
func DefaultConfig() Config {
	return Config{
		multiplier:  DefaultMultiplier,
		maxTimeout:  DefaultMaxTimeout,
		maxAttempts: DefaultMaxAttempts,
		minTimeout:  DefaultMinTimeout,
	}
}

// NewConfig applies opts on top of DefaultConfig and validates the result.
// It returns a *ConfigError (matching ErrInvalidConfig) for invalid combinations.
//
// Example:
//
//	cfg, err := retrier.NewConfig(
//	    retrier.WithMaxAttempts(3),
//	    retrier.WithMinTimeout(200*time.Millisecond),
//	)
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first constraint the config violates, if any.
func (c Config) Validate() error {
	switch {
	case c.maxTimeout < 0:
		return &ConfigError{Field: "max_timeout", Value: c.maxTimeout.String(), Reason: "must not be negative"}
	case c.minTimeout < 0:
		return &ConfigError{Field: "min_timeout", Value: c.minTimeout.String(), Reason: "must not be negative"}
	case c.minTimeout > c.maxTimeout:
		return &ConfigError{
			Field:  "min_timeout",
			Value:  c.minTimeout.String(),
			Reason: "must not exceed max_timeout (" + c.maxTimeout.String() + ")",
		}
	case c.maxAttempts < 1:
		return &ConfigError{Field: "max_attempts", Value: strconv.Itoa(c.maxAttempts), Reason: "must be at least 1"}
	case math.IsNaN(c.multiplier) || math.IsInf(c.multiplier, 0) || c.multiplier <= 0:
		return &ConfigError{Field: "multiplier", Value: strconv.FormatFloat(c.multiplier, 'g', -1, 64), Reason: "must be a finite number greater than 0"}
	}
	return nil
}

// Multiplier returns the backoff growth factor.
func (c Config) Multiplier() float64 {
	return c.multiplier
}

// MaxTimeout returns the backoff cap.
func (c Config) MaxTimeout() time.Duration {
	return c.maxTimeout
}

// MaxAttempts returns the total attempt budget.
func (c Config) MaxAttempts() int {
	return c.maxAttempts
}

// MinTimeout returns the initial timeout.
func (c Config) MinTimeout() time.Duration {
	return c.minTimeout
}

// Options returns options that reproduce c when passed to NewConfig.
func (c Config) Options() []Option {
	return []Option{
		WithMultiplier(c.multiplier),
		WithMaxTimeout(c.maxTimeout),
		WithMaxAttempts(c.maxAttempts),
		WithMinTimeout(c.minTimeout),
	}
}
