package middleware

import (
	"context"
	"errors"
	"time"

	"rosgo/tcpros"
)

// Retry retries a failed invocation with exponential backoff, but only when
// the failure is a transport error (connect refused, peer closed, header
// mismatch) — a service-reported error (spec.md §7 ServiceError, surfaced
// verbatim from the handler) is never retryable, since re-sending the same
// request to the same buggy handler cannot change its answer.
func Retry(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx context.Context) error {
			err := next(ctx)
			for attempt := 0; attempt < maxRetries; attempt++ {
				if err == nil {
					return nil
				}
				var transportErr tcpros.TransportError
				if !errors.As(err, &transportErr) {
					return err
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(baseDelay * time.Duration(1<<attempt)):
				}
				err = next(ctx)
			}
			return err
		}
	}
}
