package node

import (
	"sync"

	"go.uber.org/zap"

	"rosgo/wire"
)

// Subscription is the node-owned handle returned by Node.Subscribe
// (spec.md §3 Subscription, §4.7 Subscriber engine): one peerSource per
// currently-connected publisher, a shared bounded drop-oldest queue, and a
// single dispatch worker invoking the user callback serially — the
// ordering contract the callback sees (spec.md §4.7/§5).
type Subscription struct {
	node     *Node
	topic    string
	msgType  string
	md5sum   string
	factory  func() wire.Message
	callback func(wire.Message)

	logger *zap.Logger
	queue  *dropOldestQueue

	mu      sync.Mutex
	peers   map[string]*peerSource
	closed  bool
	updates <-chan []string

	dispatchWG sync.WaitGroup

	watchStop chan struct{}
	watchWG   sync.WaitGroup
}

func newSubscription(n *Node, topic, msgType, md5sum string, factory func() wire.Message, callback func(wire.Message), queueCapacity int) *Subscription {
	s := &Subscription{
		node:      n,
		topic:     topic,
		msgType:   msgType,
		md5sum:    md5sum,
		factory:   factory,
		callback:  callback,
		logger:    xlogComponent(n.logger, "subscriber"),
		queue:     newDropOldestQueue(queueCapacity),
		peers:     make(map[string]*peerSource),
		watchStop: make(chan struct{}),
	}
	s.dispatchWG.Add(1)
	go s.dispatchLoop()
	return s
}

func (s *Subscription) dispatchLoop() {
	defer s.dispatchWG.Done()
	for {
		payload, ok := s.queue.pop()
		if !ok {
			return
		}
		msg, err := wire.Decode(s.factory, payload)
		if err != nil {
			s.logger.Warn("malformed message, dropping", zap.String("topic", s.topic), zap.Error(err))
			continue
		}
		s.callback(msg)
	}
}

// deliver is called by a peerSource reader goroutine for every frame it
// decodes off the wire; it never blocks (drop-oldest on the shared queue).
func (s *Subscription) deliver(payload []byte) {
	s.queue.push(payload)
}

// connectPeer dials, negotiates, and tracks a new publisher URI. Safe to
// call for a URI we're already connected to (idempotent, mirrors master
// registration idempotency).
func (s *Subscription) connectPeer(uri string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, exists := s.peers[uri]; exists {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	peer, err := dialPeerSource(s, uri)
	if err != nil {
		s.logger.Warn("failed to connect to publisher", zap.String("uri", uri), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		peer.close()
		return
	}
	s.peers[uri] = peer
	s.mu.Unlock()
}

// peerDisconnected removes uri from the tracked peer set after its reader
// observes EOF or a transport error (spec.md §7: transport errors tear
// down the offending peer only; the subscription survives).
func (s *Subscription) peerDisconnected(uri string) {
	s.mu.Lock()
	delete(s.peers, uri)
	s.mu.Unlock()
}

// applyPublisherUpdate diffs the master's current publisher set against
// what we're connected to: new URIs connect, removed URIs are closed
// (spec.md §4.7 publisherUpdate handling).
func (s *Subscription) applyPublisherUpdate(current []string) {
	want := make(map[string]bool, len(current))
	for _, uri := range current {
		want[uri] = true
		s.connectPeer(uri)
	}

	s.mu.Lock()
	var stale []*peerSource
	for uri, peer := range s.peers {
		if !want[uri] {
			stale = append(stale, peer)
			delete(s.peers, uri)
		}
	}
	s.mu.Unlock()

	for _, peer := range stale {
		peer.close()
	}
}

// startWatch records updates as the channel this subscription watches and
// launches the goroutine applying every publisher-set push it carries.
// close() owns both: it signals watchStop and waits for watchWG, then
// releases updates back to the master, so no watch goroutine or channel
// outlives its Subscription (spec.md §5).
func (s *Subscription) startWatch(updates <-chan []string) {
	s.mu.Lock()
	s.updates = updates
	s.mu.Unlock()

	s.watchWG.Add(1)
	go s.watchLoop(updates)
}

// watchLoop applies every publisher-set update the master pushes, until
// either the channel closes (watch teardown on the master side) or
// watchStop is signaled by close() (subscription teardown on our side) —
// the channel closing alone is not guaranteed to happen, so watchStop is
// what actually bounds this goroutine's lifetime.
func (s *Subscription) watchLoop(updates <-chan []string) {
	defer s.watchWG.Done()
	for {
		select {
		case uris, ok := <-updates:
			if !ok {
				return
			}
			s.applyPublisherUpdate(uris)
		case <-s.watchStop:
			return
		}
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	peers := s.peers
	s.peers = nil
	updates := s.updates
	s.mu.Unlock()

	close(s.watchStop)
	s.watchWG.Wait()
	if updates != nil {
		s.node.master.UnwatchPublishers(s.topic, updates)
	}

	for _, peer := range peers {
		peer.close()
	}
	s.queue.close()
	s.dispatchWG.Wait()
}
