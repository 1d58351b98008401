package master

import (
	"context"
	"sync"
)

type topicState struct {
	publishers  map[string]string // callerID -> API address
	subscribers map[string]string
}

type serviceState struct {
	providers map[string]string // callerID -> service API address
}

// InMemoryMaster is a process-local Client implementation: no TTL leases,
// entries live until an explicit Unregister* call, mirroring the real ROS
// master (which has no lease concept — dead nodes are detected out-of-band,
// out of scope here per §1). Suitable for single-process tests/demos and
// for multiple nodes in the same binary.
type InMemoryMaster struct {
	mu       sync.RWMutex
	topics   map[string]*topicState
	services map[string]*serviceState
	watchers map[string][]chan []string
}

// NewInMemoryMaster creates an empty master registry.
func NewInMemoryMaster() *InMemoryMaster {
	return &InMemoryMaster{
		topics:   make(map[string]*topicState),
		services: make(map[string]*serviceState),
		watchers: make(map[string][]chan []string),
	}
}

func (m *InMemoryMaster) topic(name string) *topicState {
	t, ok := m.topics[name]
	if !ok {
		t = &topicState{publishers: map[string]string{}, subscribers: map[string]string{}}
		m.topics[name] = t
	}
	return t
}

func (m *InMemoryMaster) service(name string) *serviceState {
	s, ok := m.services[name]
	if !ok {
		s = &serviceState{providers: map[string]string{}}
		m.services[name] = s
	}
	return s
}

func addrList(set map[string]string) []string {
	out := make([]string, 0, len(set))
	for _, addr := range set {
		out = append(out, addr)
	}
	return out
}

func (m *InMemoryMaster) RegisterPublisher(ctx context.Context, callerID, topic, msgType, callerAPI string) ([]string, error) {
	m.mu.Lock()
	t := m.topic(topic)
	t.publishers[callerID] = callerAPI
	subs := addrList(t.subscribers)
	pubs := addrList(t.publishers)
	m.mu.Unlock()
	m.notify(topic, pubs)
	return subs, nil
}

func (m *InMemoryMaster) RegisterSubscriber(ctx context.Context, callerID, topic, msgType, callerAPI string) ([]string, error) {
	m.mu.Lock()
	t := m.topic(topic)
	t.subscribers[callerID] = callerAPI
	pubs := addrList(t.publishers)
	m.mu.Unlock()
	return pubs, nil
}

func (m *InMemoryMaster) UnregisterPublisher(ctx context.Context, callerID, topic, callerAPI string) error {
	m.mu.Lock()
	t := m.topic(topic)
	delete(t.publishers, callerID)
	pubs := addrList(t.publishers)
	m.mu.Unlock()
	m.notify(topic, pubs)
	return nil
}

func (m *InMemoryMaster) UnregisterSubscriber(ctx context.Context, callerID, topic, callerAPI string) error {
	m.mu.Lock()
	t := m.topic(topic)
	delete(t.subscribers, callerID)
	m.mu.Unlock()
	return nil
}

func (m *InMemoryMaster) RegisterService(ctx context.Context, callerID, service, serviceAPI, callerAPI string) error {
	m.mu.Lock()
	s := m.service(service)
	s.providers[callerID] = serviceAPI
	m.mu.Unlock()
	return nil
}

func (m *InMemoryMaster) UnregisterService(ctx context.Context, callerID, service, serviceAPI string) error {
	m.mu.Lock()
	s := m.service(service)
	delete(s.providers, callerID)
	m.mu.Unlock()
	return nil
}

func (m *InMemoryMaster) LookupService(ctx context.Context, callerID, service string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.services[service]
	if !ok || len(s.providers) == 0 {
		return nil, &RejectedByMasterError{Reason: "no provider for service " + service}
	}
	return addrList(s.providers), nil
}

// WatchPublishers registers a channel that receives the current publisher
// API list every time RegisterPublisher/UnregisterPublisher changes it for
// topic. This models the master's publisherUpdate push (§4.7); the real
// binding for that callback is XML-RPC and out of scope (§1).
func (m *InMemoryMaster) WatchPublishers(topic string) <-chan []string {
	ch := make(chan []string, 1)
	m.mu.Lock()
	m.watchers[topic] = append(m.watchers[topic], ch)
	m.mu.Unlock()
	return ch
}

// UnwatchPublishers removes ch from topic's watcher set and closes it. A
// channel already removed (or never registered, e.g. a double-close from a
// racing shutdown path) is a no-op.
func (m *InMemoryMaster) UnwatchPublishers(topic string, ch <-chan []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chans := m.watchers[topic]
	for i, c := range chans {
		if c == ch {
			m.watchers[topic] = append(chans[:i], chans[i+1:]...)
			close(c)
			return
		}
	}
}

func (m *InMemoryMaster) notify(topic string, pubs []string) {
	m.mu.RLock()
	watchers := append([]chan []string{}, m.watchers[topic]...)
	m.mu.RUnlock()
	for _, ch := range watchers {
		select {
		case ch <- pubs:
		default:
		}
	}
}
