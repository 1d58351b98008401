package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimit creates a rate limiter using the token bucket algorithm: tokens
// refill at r per second up to burst, each invocation consumes one. Used on
// a publication's fan-out path to cap publish rate (node.Publication's
// optional *rate.Limiter slot, spec.md §3 SPEC_FULL addition) and on a
// service client wanting to self-throttle outgoing calls.
//
// The limiter is created once in the outer closure, not per-call — a fresh
// limiter per invocation would give every call a full bucket and defeat
// rate limiting entirely.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next Invoke) Invoke {
		return func(ctx context.Context) error {
			if !limiter.Allow() {
				return fmt.Errorf("middleware: rate limit exceeded")
			}
			return next(ctx)
		}
	}
}
