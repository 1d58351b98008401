// Package middleware implements an onion-model chain for cross-cutting
// request concerns on the node's service-call path: a service client round
// trip (and, for RateLimit, a publisher's fan-out path) is wrapped by zero
// or more middlewares without changing the call site.
//
// Onion model execution order:
//
//	Chain(A, B, C)(next)  →  A(B(C(next)))
//
//	Call:      A.before → B.before → C.before → next
//	Return:    next → C.after → B.after → A.after
package middleware

import "context"

// Invoke is the shape of one attempt at a round trip: send the request,
// block for the response, report any error (transport or service-level).
// ServiceClient.Call and the publisher's per-peer write both fit this
// signature once their arguments are captured in a closure.
type Invoke func(ctx context.Context) error

// Middleware takes an Invoke and returns a new Invoke wrapping it.
type Middleware func(next Invoke) Invoke

// Chain composes multiple middlewares into one, built right-to-left so the
// first middleware in the list is the outermost layer.
//
//	chain := Chain(Logging(logger), Timeout(time.Second), RateLimit(10, 1))
//	call := chain(roundTrip)
//	// Execution: Logging → Timeout → RateLimit → roundTrip → ... → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next Invoke) Invoke {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
