package retry

import (
	"testing"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

func TestSchedule(t *testing.T) {
	cfg := mustConfig(t,
		retrier.WithMultiplier(2),
		retrier.WithMaxTimeout(10*time.Second),
		retrier.WithMaxAttempts(5),
		retrier.WithMinTimeout(time.Second),
	)
	b := NewFullJitterBackoff(cfg, fixedJitter(0.5))

	steps := Schedule(b)
	if len(steps) != 4 {
		t.Fatalf("len(Schedule) = %d, want 4 (no wait after the last attempt)", len(steps))
	}

	wantMax := []time.Duration{time.Second, time.Second, 2 * time.Second, 4 * time.Second}
	wantSample := []time.Duration{time.Second, 500 * time.Millisecond, time.Second, 2 * time.Second}
	for i, s := range steps {
		if s.Attempt != i+1 {
			t.Errorf("steps[%d].Attempt = %d, want %d", i, s.Attempt, i+1)
		}
		if s.MaxWait != wantMax[i] {
			t.Errorf("steps[%d].MaxWait = %v, want %v", i, s.MaxWait, wantMax[i])
		}
		if s.Sample != wantSample[i] {
			t.Errorf("steps[%d].Sample = %v, want %v", i, s.Sample, wantSample[i])
		}
	}

	if got := WorstCaseWait(steps); got != 8*time.Second {
		t.Errorf("WorstCaseWait = %v, want 8s", got)
	}
}

func TestSchedule_SingleAttempt(t *testing.T) {
	cfg := mustConfig(t, retrier.WithMaxAttempts(1))
	if steps := Schedule(NewFullJitterBackoff(cfg)); len(steps) != 0 {
		t.Errorf("Schedule with one attempt = %v, want empty", steps)
	}
}
