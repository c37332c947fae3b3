package ingest

import (
	"context"
	"time"

	"github.com/poiesic/retrievit/ai"
)

// RetryPolicy controls how embedding calls are retried after transient
// provider failures.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. It doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the doubling. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// exponential backoff from 1s, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// RetryWithBackoff runs op, retrying while it fails transiently. Terminal
// failures return immediately. Backoff sleeps are context-aware, so
// cancellation cuts a wait short and returns ctx.Err().
func RetryWithBackoff(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := policy.BaseDelay
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			delay *= 2
			if policy.MaxDelay > 0 && delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if !ai.IsTransient(err) {
			return err
		}
	}

	return err
}
