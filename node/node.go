package node

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"rosgo/internal/xlog"
	"rosgo/master"
	"rosgo/rosconfig"
	"rosgo/wire"
)

// Retry policy wrapping every master registration/unregistration call
// (spec.md §4.4/§7: "Master failures are retried with bounded exponential
// backoff"). masterRetryAttempts total tries, doubling the delay each time.
const (
	masterRetryAttempts  = 4
	masterRetryBaseDelay = 100 * time.Millisecond
)

// retryMaster wraps a single master.Client call in master.WithRetry using
// the node's standard policy, leaving ctx cancellation to bg().
func retryMaster(fn func() error) error {
	return master.WithRetry(bg(), masterRetryAttempts, masterRetryBaseDelay, fn)
}

// Node is the process-local runtime entity spec.md §3 describes: a
// resolved name, the master client it registers through, its TCP listen
// address, and the tables of publications/subscriptions/services it owns.
// Per spec.md §9 design note, it is an explicit object passed to
// Advertise/Subscribe/AdvertiseService/ServiceClient rather than relying on
// any process-wide global state.
type Node struct {
	name      string
	namespace string
	remap     map[string]string

	master   master.Client
	logger   *zap.Logger
	listener net.Listener
	addr     string

	shutdown atomic.Bool

	mu            sync.RWMutex
	publications  map[string]*Publication
	subscriptions map[string]*Subscription
	services      map[string]*ServiceServer

	wg sync.WaitGroup
}

// New resolves name against cfg's namespace/remap tokens, binds the node's
// single TCP listener (shared by both subscriber connections and service
// calls), and starts its accept loop.
//
// masterClient is the already-connected master.Client implementation
// (master.InMemoryMaster or master.EtcdMaster); the XML-RPC binding a real
// master speaks is out of scope (spec.md §1), so this library is handed a
// Client directly rather than dialing ROS_MASTER_URI itself.
func New(name string, cfg *rosconfig.Config, masterClient master.Client) (*Node, error) {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}
	fqn := joinNames(namespace, name)
	if cfg.NodeNameOverride != "" {
		fqn = joinNames(namespace, cfg.NodeNameOverride)
	}

	host := cfg.Hostname
	if host == "" {
		host = "127.0.0.1"
	}
	listener, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, fmt.Errorf("node: bind failed: %w", err)
	}

	logger := xlog.New(fqn)
	n := &Node{
		name:          fqn,
		namespace:     namespace,
		remap:         cfg.Remap,
		master:        masterClient,
		logger:        logger,
		listener:      listener,
		addr:          listener.Addr().String(),
		publications:  make(map[string]*Publication),
		subscriptions: make(map[string]*Subscription),
		services:      make(map[string]*ServiceServer),
	}

	n.wg.Add(1)
	go n.acceptLoop()
	return n, nil
}

// Name returns the node's resolved fully-qualified name.
func (n *Node) Name() string { return n.name }

// CallerAPI returns the node's TCP listen address, used as both the
// publisher/subscriber/service API address a real master would track and
// the dial target peers connect to — XML-RPC's separate control-plane
// address is out of scope (spec.md §1), so the two are unified here.
func (n *Node) CallerAPI() string { return n.addr }

func (n *Node) callerID() string { return n.name }

// resolve applies spec.md §4.10 name resolution against this node's
// namespace, FQN, and remap table.
func (n *Node) resolve(name string) string {
	return resolveName(name, n.namespace, n.name, n.remap)
}

func (n *Node) isShutdown() bool { return n.shutdown.Load() }

func xlogComponent(base *zap.Logger, name string) *zap.Logger {
	return xlog.Component(base, name)
}

// acceptLoop accepts every inbound connection on the node's single
// listener and dispatches it by the first connection-header field present:
// "topic" (a subscriber connecting to one of our publications) or
// "service" (a client calling one of our services), per spec.md §4.8's
// demux-onto-one-socket alternative.
func (n *Node) acceptLoop() {
	defer n.wg.Done()
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			if n.isShutdown() {
				return
			}
			n.logger.Warn("accept failed", zap.Error(err))
			return
		}
		n.wg.Add(1)
		go n.handleConn(conn)
	}
}

func (n *Node) handleConn(conn net.Conn) {
	defer n.wg.Done()
	header, err := tcprosReadHeader(conn)
	if err != nil {
		conn.Close()
		return
	}

	switch {
	case header["topic"] != "":
		n.dispatchSubscriberConn(conn, header)
	case header["service"] != "":
		n.dispatchServiceConn(conn, header)
	default:
		conn.Close()
	}
}

func (n *Node) dispatchSubscriberConn(conn net.Conn, header map[string]string) {
	topic := n.resolve(header["topic"])
	n.mu.RLock()
	pub, ok := n.publications[topic]
	n.mu.RUnlock()
	if !ok {
		conn.Close()
		return
	}
	peerID := header["callerid"]
	if peerID == "" {
		peerID = conn.RemoteAddr().String()
	}
	if err := pub.acceptSubscriber(peerID, conn, header); err != nil {
		n.logger.Debug("subscriber negotiation failed", zap.String("topic", topic), zap.Error(err))
	}
}

func (n *Node) dispatchServiceConn(conn net.Conn, header map[string]string) {
	name := n.resolve(header["service"])
	n.mu.RLock()
	srv, ok := n.services[name]
	n.mu.RUnlock()
	if !ok {
		conn.Close()
		return
	}
	srv.serveConn(conn, header)
}

// Advertise registers a new publication for topic (spec.md §4.6). sample
// supplies the MsgType/MD5Sum advertised in the connection header; queued
// messages beyond queueCapacity drop the oldest first; a latched
// publication replays its last message to every newly-connected subscriber.
func (n *Node) Advertise(topic string, sample wire.Message, msgDefinition string, queueCapacity int, latched bool) (*Publication, error) {
	if n.isShutdown() {
		return nil, ErrAlreadyShutDown
	}
	topic = n.resolve(topic)

	n.mu.Lock()
	if _, exists := n.publications[topic]; exists {
		n.mu.Unlock()
		return nil, &NameConflictError{Name: topic}
	}
	pub := newPublication(n, topic, sample.MsgType(), sample.MD5Sum(), msgDefinition, queueCapacity, latched)
	n.publications[topic] = pub
	n.mu.Unlock()

	var subs []string
	err := retryMaster(func() error {
		var rerr error
		subs, rerr = n.master.RegisterPublisher(bg(), n.callerID(), topic, sample.MsgType(), n.CallerAPI())
		return rerr
	})
	if err != nil {
		n.mu.Lock()
		delete(n.publications, topic)
		n.mu.Unlock()
		return nil, err
	}
	_ = subs // real masters return current subscribers; peers dial us, so nothing to act on here
	return pub, nil
}

// ClosePublication unregisters and tears down a publication previously
// returned by Advertise (the Publication's scoped-handle Close).
func (n *Node) ClosePublication(p *Publication) error {
	n.mu.Lock()
	if _, ok := n.publications[p.topic]; !ok {
		n.mu.Unlock()
		return nil
	}
	delete(n.publications, p.topic)
	n.mu.Unlock()

	p.close()
	return retryMaster(func() error {
		return n.master.UnregisterPublisher(bg(), n.callerID(), p.topic, n.CallerAPI())
	})
}

// Subscribe registers a new subscription to topic (spec.md §4.7). factory
// allocates a fresh zero-value message for each decode; callback is
// invoked serially, one message at a time, by a single dispatch worker.
func (n *Node) Subscribe(topic string, msgType, md5sum string, factory func() wire.Message, queueCapacity int, callback func(wire.Message)) (*Subscription, error) {
	if n.isShutdown() {
		return nil, ErrAlreadyShutDown
	}
	topic = n.resolve(topic)

	n.mu.Lock()
	if _, exists := n.subscriptions[topic]; exists {
		n.mu.Unlock()
		return nil, &NameConflictError{Name: topic}
	}
	sub := newSubscription(n, topic, msgType, md5sum, factory, callback, queueCapacity)
	n.subscriptions[topic] = sub
	n.mu.Unlock()

	var pubs []string
	err := retryMaster(func() error {
		var rerr error
		pubs, rerr = n.master.RegisterSubscriber(bg(), n.callerID(), topic, msgType, n.CallerAPI())
		return rerr
	})
	if err != nil {
		n.mu.Lock()
		delete(n.subscriptions, topic)
		n.mu.Unlock()
		sub.close()
		return nil, err
	}
	sub.applyPublisherUpdate(pubs)

	updates := n.master.WatchPublishers(topic)
	sub.startWatch(updates)

	return sub, nil
}

// CloseSubscription unregisters and tears down a subscription previously
// returned by Subscribe.
func (n *Node) CloseSubscription(s *Subscription) error {
	n.mu.Lock()
	if _, ok := n.subscriptions[s.topic]; !ok {
		n.mu.Unlock()
		return nil
	}
	delete(n.subscriptions, s.topic)
	n.mu.Unlock()

	s.close()
	return retryMaster(func() error {
		return n.master.UnregisterSubscriber(bg(), n.callerID(), s.topic, n.CallerAPI())
	})
}

// AdvertiseService registers a new service server for name (spec.md §4.8).
func (n *Node) AdvertiseService(name string, reqFactory, resFactory func() wire.Message, svcMD5 string, handler func(req wire.Message) (wire.Message, error)) (*ServiceServer, error) {
	if n.isShutdown() {
		return nil, ErrAlreadyShutDown
	}
	name = n.resolve(name)

	n.mu.Lock()
	if _, exists := n.services[name]; exists {
		n.mu.Unlock()
		return nil, &NameConflictError{Name: name}
	}
	srv := newServiceServer(n, name, reqFactory, resFactory, svcMD5, handler)
	n.services[name] = srv
	n.mu.Unlock()

	err := retryMaster(func() error {
		return n.master.RegisterService(bg(), n.callerID(), name, n.CallerAPI(), n.CallerAPI())
	})
	if err != nil {
		n.mu.Lock()
		delete(n.services, name)
		n.mu.Unlock()
		return nil, err
	}
	return srv, nil
}

// CloseService unregisters and tears down a service server previously
// returned by AdvertiseService.
func (n *Node) CloseService(s *ServiceServer) error {
	n.mu.Lock()
	if _, ok := n.services[s.name]; !ok {
		n.mu.Unlock()
		return nil
	}
	delete(n.services, s.name)
	n.mu.Unlock()

	return retryMaster(func() error {
		return n.master.UnregisterService(bg(), n.callerID(), s.name, n.CallerAPI())
	})
}

// ServiceClient resolves name's current provider(s) via the master and
// returns a client ready to make calls. When more than one provider is
// advertised, bal picks among them per call (spec.md §3 SPEC_FULL
// addition); pass nil for the common single-provider case to default to
// loadbalance.RoundRobin.
func (n *Node) ServiceClient(name string, reqFactory, resFactory func() wire.Message, svcMD5 string) (*ServiceClient, error) {
	name = n.resolve(name)
	return newServiceClient(n, name, reqFactory, resFactory, svcMD5), nil
}

// Close shuts the node down: raises the cooperative shutdown flag, issues
// an unregister RPC for every live handle, closes the listener, and waits
// for every reader/writer goroutine to exit (spec.md §4.10/§7). Idempotent.
func (n *Node) Close() error {
	if !n.shutdown.CompareAndSwap(false, true) {
		return nil // already shut down, not an error (spec.md §7)
	}

	n.listener.Close()

	n.mu.Lock()
	pubs := n.publications
	subs := n.subscriptions
	srvs := n.services
	n.publications = nil
	n.subscriptions = nil
	n.services = nil
	n.mu.Unlock()

	for topic, p := range pubs {
		p.close()
		topic := topic
		err := retryMaster(func() error {
			return n.master.UnregisterPublisher(bg(), n.callerID(), topic, n.CallerAPI())
		})
		if err != nil {
			n.logger.Debug("unregister publisher on shutdown", zap.String("topic", topic), zap.Error(err))
		}
	}
	for topic, s := range subs {
		s.close()
		topic := topic
		err := retryMaster(func() error {
			return n.master.UnregisterSubscriber(bg(), n.callerID(), topic, n.CallerAPI())
		})
		if err != nil {
			n.logger.Debug("unregister subscriber on shutdown", zap.String("topic", topic), zap.Error(err))
		}
	}
	for name, s := range srvs {
		name := name
		err := retryMaster(func() error {
			return n.master.UnregisterService(bg(), n.callerID(), name, n.CallerAPI())
		})
		if err != nil {
			n.logger.Debug("unregister service on shutdown", zap.String("service", name), zap.Error(err))
		}
		_ = s
	}

	n.wg.Wait()
	n.logger.Sync()
	return nil
}
