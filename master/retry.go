package master

import (
	"context"
	"time"
)

// WithRetry retries fn with bounded exponential backoff while it returns an
// UnreachableError, up to maxAttempts total tries, then surfaces the last
// error (§4.4/§7: "Master failures are retried with bounded exponential
// backoff"). Any other error returned by fn is surfaced immediately.
func WithRetry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if _, unreachable := lastErr.(*UnreachableError); !unreachable {
			return lastErr
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}
