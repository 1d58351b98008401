package middleware

import (
	"context"
	"fmt"
	"time"
)

// Timeout enforces a maximum duration for each invocation. If next doesn't
// complete within the timeout, the caller gives up waiting — the goroutine
// running next is not cancelled (no way to interrupt a blocking socket
// read/write from outside), it simply keeps running in the background and
// its result, if any, is discarded.
func Timeout(timeout time.Duration) Middleware {
	return func(next Invoke) Invoke {
		return func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan error, 1) // buffered: avoid leaking the goroutine if we time out first
			go func() {
				done <- next(ctx)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return fmt.Errorf("middleware: call timed out after %s", timeout)
			}
		}
	}
}
