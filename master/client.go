// Package master implements the node-side client contract for the name
// service daemon (§4.4). The XML-RPC wire encoding used by the real
// collaborator is out of scope (§1) — only the operations a node issues are
// core here, sketched as the Client interface and backed by two concrete,
// fully-functional implementations: an in-memory master for tests/demos and
// an etcd-backed one for deployments that already run etcd.
package master

import "context"

// Client is every registration/discovery call a node issues against the
// master (§4.4). Every registration is idempotent at the library level —
// re-issuing is always safe.
type Client interface {
	// RegisterPublisher registers callerID as a publisher of topic and
	// returns the API addresses of currently registered subscribers.
	RegisterPublisher(ctx context.Context, callerID, topic, msgType, callerAPI string) (subscriberAPIs []string, err error)

	// RegisterSubscriber registers callerID as a subscriber of topic and
	// returns the API addresses of currently registered publishers.
	RegisterSubscriber(ctx context.Context, callerID, topic, msgType, callerAPI string) (publisherAPIs []string, err error)

	UnregisterPublisher(ctx context.Context, callerID, topic, callerAPI string) error
	UnregisterSubscriber(ctx context.Context, callerID, topic, callerAPI string) error

	// RegisterService registers callerID as the provider of service at
	// serviceAPI (a host:port TCPROS address).
	RegisterService(ctx context.Context, callerID, service, serviceAPI, callerAPI string) error
	UnregisterService(ctx context.Context, callerID, service, serviceAPI string) error

	// LookupService returns the API addresses of every current provider of
	// service. The original protocol returns a single service_api; this
	// library tolerates more than one (Design note, §9 (ii) generalization)
	// and leaves the choice among them to loadbalance.Balancer.
	LookupService(ctx context.Context, callerID, service string) (serviceAPIs []string, err error)

	// WatchPublishers streams updated publisher API lists for topic,
	// corresponding to the master's publisherUpdate callback (§4.7). The
	// channel is closed when the watch can no longer be serviced.
	WatchPublishers(topic string) <-chan []string

	// UnwatchPublishers releases a channel previously returned by
	// WatchPublishers for topic, stopping whatever goroutine feeds it so it
	// can be garbage collected. Safe to call with a channel already released
	// or never registered (spec.md §5: every watch is owned by exactly one
	// handle, and that handle's destruction closes it).
	UnwatchPublishers(topic string, ch <-chan []string)
}
