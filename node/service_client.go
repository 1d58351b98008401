package node

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"rosgo/loadbalance"
	"rosgo/middleware"
	"rosgo/tcpros"
	"rosgo/wire"
)

// Default middleware policy for ServiceClient.Call: log every round trip,
// retry transport-level failures (connect refused, header mismatch) with
// backoff, and bound each individual attempt so a wedged peer can't hang a
// caller forever (spec.md §6 DOMAIN STACK, §7 transport errors).
const (
	serviceCallRetries    = 2
	serviceCallRetryDelay = 50 * time.Millisecond
	serviceCallTimeout    = 5 * time.Second
)

// ServiceClient is the node-owned handle returned by Node.ServiceClient
// (spec.md §3 ServiceClient, §4.9 Service client): one request per call,
// each over its own fresh TCP connection unless Persistent() is used to
// obtain a PersistentServiceClient instead. Every call discovers a
// provider, optionally balances among several, dials, and round-trips.
type ServiceClient struct {
	node       *Node
	name       string
	svcMD5     string
	reqFactory func() wire.Message
	resFactory func() wire.Message
	balancer   loadbalance.Balancer
	logger     *zap.Logger
	chain      middleware.Middleware
}

func newServiceClient(n *Node, name string, reqFactory, resFactory func() wire.Message, svcMD5 string) *ServiceClient {
	logger := xlogComponent(n.logger, "service")
	return &ServiceClient{
		node:       n,
		name:       name,
		svcMD5:     svcMD5,
		reqFactory: reqFactory,
		resFactory: resFactory,
		balancer:   &loadbalance.RoundRobinBalancer{},
		logger:     logger,
		chain: middleware.Chain(
			middleware.Logging(logger, name),
			middleware.Retry(serviceCallRetries, serviceCallRetryDelay),
			middleware.Timeout(serviceCallTimeout),
		),
	}
}

// SetBalancer overrides the default round-robin selection used when
// lookupService resolves more than one provider for this service name.
func (c *ServiceClient) SetBalancer(b loadbalance.Balancer) { c.balancer = b }

func (c *ServiceClient) pickProvider(ctx context.Context) (string, error) {
	addrs, err := c.node.master.LookupService(ctx, c.node.callerID(), c.name)
	if err != nil {
		return "", err
	}
	if len(addrs) == 1 {
		return addrs[0], nil
	}
	instances := make([]loadbalance.Instance, len(addrs))
	for i, a := range addrs {
		instances[i] = loadbalance.Instance{Addr: a, Weight: 1}
	}
	inst, err := c.balancer.Pick(instances)
	if err != nil {
		return "", err
	}
	return inst.Addr, nil
}

// Call resolves a provider, opens a fresh connection, and performs exactly
// one request/response round trip (spec.md §4.9). The returned error is
// either a *ServiceError (server-reported, §7) or a transport error
// (§7 TransportError) distinguishable via errors.As.
func (c *ServiceClient) Call(ctx context.Context, req wire.Message) (wire.Message, error) {
	var res wire.Message
	err := c.chain(func(ctx context.Context) error {
		var invokeErr error
		res, invokeErr = c.dialAndCall(ctx, req)
		return invokeErr
	})(ctx)
	return res, err
}

func (c *ServiceClient) dialAndCall(ctx context.Context, req wire.Message) (wire.Message, error) {
	addr, err := c.pickProvider(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &tcpros.ConnectFailedError{Reason: err.Error()}
	}
	defer conn.Close()

	return c.roundTrip(conn, false, req)
}

func (c *ServiceClient) roundTrip(conn net.Conn, persistent bool, req wire.Message) (wire.Message, error) {
	reqHeader := tcpros.ServiceClientHeader(c.node.callerID(), c.name, c.svcMD5, persistent)
	if err := tcpros.WriteHeader(conn, reqHeader); err != nil {
		return nil, err
	}
	replyHeader, err := tcpros.ReadHeader(conn)
	if err != nil {
		return nil, err
	}
	if reason, isErr := replyHeader["error"]; isErr {
		return nil, &tcpros.HeaderMismatchError{Reason: reason}
	}
	if err := tcpros.CheckMD5(c.svcMD5, replyHeader["md5sum"]); err != nil {
		return nil, err
	}

	payload, err := wire.Encode(req)
	if err != nil {
		return nil, err
	}
	if err := tcpros.WriteMessage(conn, payload); err != nil {
		return nil, err
	}

	ok, body, err := tcpros.ReadServiceResponse(conn)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ServiceError{Message: string(body)}
	}
	return wire.Decode(c.resFactory, body)
}

// ServiceCallHandle is returned by CallAsync; Wait blocks for the result.
type ServiceCallHandle struct {
	done chan struct{}
	res  wire.Message
	err  error
}

// CallAsync issues the call on a background goroutine and returns
// immediately with a handle; N async calls over N connections run in
// parallel (spec.md §4.9 S6).
func (c *ServiceClient) CallAsync(ctx context.Context, req wire.Message) *ServiceCallHandle {
	h := &ServiceCallHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.res, h.err = c.Call(ctx, req)
	}()
	return h
}

// Wait blocks until the call completes or ctx is cancelled, whichever comes
// first; a cancellation surfaces as *TimeoutError without affecting the
// in-flight call itself.
func (h *ServiceCallHandle) Wait(ctx context.Context) (wire.Message, error) {
	select {
	case <-h.done:
		return h.res, h.err
	case <-ctx.Done():
		return nil, &TimeoutError{Operation: "service call"}
	}
}

// Persistent opens a long-lived connection to one resolved provider and
// returns a client that pipelines subsequent calls over it, preserving
// request/response FIFO pairing (spec.md §4.9). The per-connection state
// machine (Init -> HeaderSent -> HeaderAck -> {Requesting ->
// AwaitingResponse -> HeaderAck | Closed}) collapses here to a single
// mutex serializing whole round trips: correctness-preserving (FIFO is
// free once only one request is in flight at a time) at the cost of the
// protocol's theoretical pipelining depth, a simplification recorded in
// DESIGN.md.
func (c *ServiceClient) Persistent(ctx context.Context) (*PersistentServiceClient, error) {
	addr, err := c.pickProvider(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &tcpros.ConnectFailedError{Reason: err.Error()}
	}

	reqHeader := tcpros.ServiceClientHeader(c.node.callerID(), c.name, c.svcMD5, true)
	if err := tcpros.WriteHeader(conn, reqHeader); err != nil {
		conn.Close()
		return nil, err
	}
	replyHeader, err := tcpros.ReadHeader(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reason, isErr := replyHeader["error"]; isErr {
		conn.Close()
		return nil, &tcpros.HeaderMismatchError{Reason: reason}
	}
	if err := tcpros.CheckMD5(c.svcMD5, replyHeader["md5sum"]); err != nil {
		conn.Close()
		return nil, err
	}

	return &PersistentServiceClient{client: c, conn: conn}, nil
}

// PersistentServiceClient is a ServiceClient bound to a single already
// negotiated connection (state HeaderAck, spec.md §4.9).
type PersistentServiceClient struct {
	client *ServiceClient
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// Call sends req and waits for the matching response on the shared
// connection; calls from multiple goroutines are serialized so the FIFO
// request/response pairing the wire protocol requires is never violated.
func (p *PersistentServiceClient) Call(req wire.Message) (wire.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, &tcpros.PeerClosedError{}
	}

	payload, err := wire.Encode(req)
	if err != nil {
		return nil, err
	}
	if err := tcpros.WriteMessage(p.conn, payload); err != nil {
		p.closed = true
		return nil, err
	}
	ok, body, err := tcpros.ReadServiceResponse(p.conn)
	if err != nil {
		p.closed = true
		return nil, err
	}
	if !ok {
		return nil, &ServiceError{Message: string(body)}
	}
	return wire.Decode(p.client.resFactory, body)
}

// Close ends the persistent connection.
func (p *PersistentServiceClient) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}

// WaitForService polls the master's lookupService on pollInterval until a
// provider appears or ctx is done, returning *TimeoutError on the latter
// (spec.md §5 "wait_for_service(timeout) polls lookupService on a bounded
// interval until success or timeout").
func (n *Node) WaitForService(ctx context.Context, name string) error {
	const pollInterval = 50 * time.Millisecond
	resolved := n.resolve(name)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if _, err := n.master.LookupService(ctx, n.callerID(), resolved); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return &TimeoutError{Operation: "wait_for_service(" + resolved + ")"}
		case <-ticker.C:
		}
	}
}
