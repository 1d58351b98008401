package node

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"

	"rosgo/middleware"
	"rosgo/tcpros"
	"rosgo/wire"
)

// Publication is the node-owned handle returned by Node.Advertise: fan-out
// to every currently-connected subscriber, optional message latching, and
// the registration the node unregisters on Close (spec.md §3 Publication,
// §4.6 Publisher engine).
type Publication struct {
	node    *Node
	topic   string
	msgType string
	md5sum  string
	msgDef  string
	latched bool
	queue   int

	logger *zap.Logger

	mu      sync.Mutex
	peers   map[string]*peerSink
	last    []byte // latched payload, nil until the first Publish
	closed  bool
	chain   middleware.Middleware // nil unless SetRateLimit has been called
}

func newPublication(n *Node, topic, msgType, md5sum, msgDef string, queueCapacity int, latched bool) *Publication {
	return &Publication{
		node:    n,
		topic:   topic,
		msgType: msgType,
		md5sum:  md5sum,
		msgDef:  msgDef,
		latched: latched,
		queue:   queueCapacity,
		logger:  xlogComponent(n.logger, "publisher"),
		peers:   make(map[string]*peerSink),
	}
}

// SetRateLimit caps Publish to r messages/sec with burst capacity (spec.md
// §3 SPEC_FULL addition, §4.6): a publish beyond the bucket returns
// *RateLimitedError instead of blocking or silently dropping. Wired through
// middleware.RateLimit ahead of the per-peer fan-out, so a runaway
// publisher cannot out-produce every peer's drop-oldest queue at once. nil
// (the default) is unlimited.
func (p *Publication) SetRateLimit(r float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chain = middleware.Chain(middleware.Logging(p.logger, "publish:"+p.topic), middleware.RateLimit(r, burst))
}

// Publish serializes msg and enqueues it onto every connected subscriber's
// sink. Non-blocking: each sink applies drop-oldest on overflow, and a
// write failure only tears down that one peer (spec.md §4.6).
func (p *Publication) Publish(msg wire.Message) error {
	p.mu.Lock()
	chain := p.chain
	p.mu.Unlock()
	if chain == nil {
		return p.publishNow(msg)
	}
	return chain(func(ctx context.Context) error { return p.publishNow(msg) })(context.Background())
}

func (p *Publication) publishNow(msg wire.Message) error {
	payload, err := wire.Encode(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrAlreadyShutDown
	}
	if p.latched {
		p.last = payload
	}
	peers := make([]*peerSink, 0, len(p.peers))
	for _, sink := range p.peers {
		peers = append(peers, sink)
	}
	p.mu.Unlock()

	for _, sink := range peers {
		sink.enqueue(payload)
	}
	return nil
}

// SubscriberCount returns the number of currently connected subscribers.
func (p *Publication) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.peers)
}

// acceptSubscriber completes the publisher-side header negotiation for a
// freshly accepted connection and, on success, registers a peer sink and
// replays the latched message if one exists (spec.md §4.5/§4.6).
func (p *Publication) acceptSubscriber(peerID string, conn net.Conn, reqHeader map[string]string) error {
	if err := tcpros.CheckMD5(reqHeader["md5sum"], p.md5sum); err != nil {
		tcpros.WriteHeader(conn, tcpros.ErrorHeader(err.Error()))
		conn.Close()
		return err
	}
	reply := tcpros.PublisherReplyHeader(p.node.callerID(), p.topic, p.msgType, p.md5sum, p.msgDef, p.latched)
	if err := tcpros.WriteHeader(conn, reply); err != nil {
		conn.Close()
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		conn.Close()
		return ErrAlreadyShutDown
	}
	sink := newPeerSink(peerID, conn, p.queue, p.logger)
	p.peers[peerID] = sink
	latched := p.last
	p.mu.Unlock()

	if latched != nil {
		sink.enqueue(latched)
	}
	p.logger.Debug("subscriber connected", zap.String("topic", p.topic), zap.String("peer", peerID))
	return nil
}

// close tears down every connected peer sink; unregistration against the
// master happens in Node.Close, which owns the registration bookkeeping.
func (p *Publication) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	peers := p.peers
	p.peers = nil
	p.mu.Unlock()

	for _, sink := range peers {
		sink.close()
	}
}
