package blockchain

import (
	"context"
	"time"
)

// RetryPolicy implements the linear backoff shared by every adapter:
// 1s*(attempt+1) between attempts, up to MaxAttempts. Tron's 403 rate limit
// uses a taller ceiling and a higher floor, see TronRateLimitRetryPolicy.
type RetryPolicy struct {
	MaxAttempts int
	Unit        time.Duration
	MinDelay    time.Duration
}

// DefaultRetryPolicy is the 3-attempt, 1s-unit policy used by EVM, Bitcoin,
// and XRP adapters.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Unit: time.Second, MinDelay: 0}
}

// TronRateLimitRetryPolicy is the 5-attempt, 2s-floor policy used when
// Tron's HTTP API returns 403.
func TronRateLimitRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Unit: time.Second, MinDelay: 2 * time.Second}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.Unit * time.Duration(attempt+1)
	if d < p.MinDelay {
		return p.MinDelay
	}
	return d
}

// Do calls fn up to MaxAttempts times, sleeping delay(attempt) between
// failures. It returns the last error if every attempt fails, or nil as soon
// as fn succeeds. A cancelled context aborts the wait and returns its error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}
