package resilience

import (
	"context"
	"time"
)

// Retry calls fn until it succeeds, reports the error as permanent, or
// maxRetries retries are used up. fn returns retryable=false to stop early.
// The last error is returned. Waiting between attempts honors ctx.
func Retry(ctx context.Context, maxRetries int, backoff BackoffStrategy, fn func(attempt int) (retryable bool, err error)) error {
	var err error
	for attempt := 0; ; attempt++ {
		var retryable bool
		retryable, err = fn(attempt)
		if err == nil || !retryable || attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(backoff.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
