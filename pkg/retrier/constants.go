package retrier

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation eventually succeeded
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid retry configuration or parameters
	ExitConnectionError = 11 // Probe target unreachable (non-transient failure)
	ExitExhausted       = 15 // Every attempt failed
	ExitAborted         = 16 // Interrupted or deadline reached while retrying
)

const (
	// DefaultMultiplier is the default factor by which the backoff ceiling grows.
	DefaultMultiplier = 2.0

	// DefaultMaxTimeout is the default cap on any single backoff.
	DefaultMaxTimeout = 60 * time.Second

	// DefaultMaxAttempts is the default total number of attempts.
	DefaultMaxAttempts = 5

	// DefaultMinTimeout is the default wait after the first failure.
	DefaultMinTimeout = 1 * time.Second

	// DefaultProbeTimeout bounds a single probe attempt.
	DefaultProbeTimeout = 5 * time.Second

	// MaxErrorPreviewLength is the maximum number of characters of captured
	// command output shown in error messages.
	MaxErrorPreviewLength = 200
)
