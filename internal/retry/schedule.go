package retry

import "time"

// Step is one row of a retry schedule: the wait that follows a failed attempt.
type Step struct {
	// Attempt is the 1-based number of the failed attempt.
	Attempt int
	// MaxWait is the upper bound of the wait. The first wait is exact.
	MaxWait time.Duration
	// Sample is one draw from the strategy.
	Sample time.Duration
}

// Schedule lists the waits between attempts; there is none after the last one.
func Schedule(b *FullJitterBackoff) []Step {
	n := b.MaxAttempts() - 1
	if n < 0 {
		n = 0
	}

	steps := make([]Step, 0, n)
	for i := 0; i < n; i++ {
		maxWait := b.cfg.MinTimeout()
		if i > 0 {
			maxWait = b.Ceiling(i - 1)
		}
		steps = append(steps, Step{Attempt: i + 1, MaxWait: maxWait, Sample: b.NextDelay(i)})
	}
	return steps
}

// WorstCaseWait is the sum of every MaxWait in steps.
func WorstCaseWait(steps []Step) time.Duration {
	var total time.Duration
	for _, s := range steps {
		total += s.MaxWait
	}
	return total
}
