// Package node implements the runtime half of the library (spec.md §4.6-4.10):
// node lifecycle and naming, the publisher/subscriber pub-sub engines, and
// the service server/client. One TCP listener per node multiplexes both
// topic subscriber connections and service client calls onto a single
// accept loop.
package node

import (
	"fmt"
)

// ServiceError is a server-reported failure string, surfaced verbatim to
// the caller (spec.md §7 ServiceError) — distinct from a transport failure.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return "node: service error: " + e.Message }

// TimeoutError is returned by operations bounded by a caller-supplied
// deadline (wait_for_service, CallAsync.Wait), parameterized by the
// operation name (spec.md §7 Timeout).
type TimeoutError struct {
	Operation string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("node: %s timed out", e.Operation)
}

// ErrAlreadyShutDown is returned by any registration call issued after the
// node's shutdown flag has been raised. Shutdown itself is idempotent: a
// second Close() call is not an error (spec.md §7).
var ErrAlreadyShutDown = fmt.Errorf("node: already shut down")

// NameConflictError is returned when a publication, subscription, or
// service is registered under a name the node already owns one of the same
// kind under.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string { return "node: name already registered: " + e.Name }
