// EtcdMaster is an alternative to InMemoryMaster for deployments that
// already run etcd: a distributed-consistent name service instead of a
// single process's in-memory tables, useful when nodes are spread across
// machines and no single process can host the master's state.
//
// Keys are TTL-leased under a hierarchical prefix, with a background
// KeepAlive goroutine per lease, and Watch-driven push notification takes
// the place of polling — three distinct namespaces under one prefix track
// a ROS-style master's publishers, subscribers, and services.
package master

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	publishersPrefix  = "/rosgo/topics/%s/publishers/"
	subscribersPrefix = "/rosgo/topics/%s/subscribers/"
	servicesPrefix    = "/rosgo/services/%s/providers/"

	// registrationTTL is the lease lifetime backing every key this master
	// writes; KeepAlive renews it continuously so only a crashed node (one
	// that stops renewing) ever has its registration time out — the core
	// protocol itself is lease-agnostic (spec.md §4.4 has no heartbeat),
	// this is purely a deployment robustness addition.
	registrationTTL = 30
)

type etcdRegistration struct {
	CallerID string `json:"caller_id"`
	API      string `json:"api"`
	MsgType  string `json:"msg_type,omitempty"`
}

// EtcdMaster implements Client backed by an etcd v3 cluster.
type EtcdMaster struct {
	client *clientv3.Client

	mu      sync.Mutex
	cancels map[chan []string]context.CancelFunc
}

// NewEtcdMaster connects to the given etcd endpoints.
func NewEtcdMaster(endpoints []string) (*EtcdMaster, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, &UnreachableError{Reason: err.Error()}
	}
	return &EtcdMaster{client: c, cancels: make(map[chan []string]context.CancelFunc)}, nil
}

func (m *EtcdMaster) put(ctx context.Context, key string, reg etcdRegistration) error {
	lease, err := m.client.Grant(ctx, registrationTTL)
	if err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	val, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	if _, err := m.client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	ch, err := m.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	go func() {
		for range ch {
		}
	}()
	return nil
}

func (m *EtcdMaster) list(ctx context.Context, prefix string) ([]etcdRegistration, error) {
	resp, err := m.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, &UnreachableError{Reason: err.Error()}
	}
	out := make([]etcdRegistration, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var reg etcdRegistration
		if err := json.Unmarshal(kv.Value, &reg); err != nil {
			continue // skip malformed entries rather than fail the whole lookup
		}
		out = append(out, reg)
	}
	return out, nil
}

func apiList(regs []etcdRegistration) []string {
	out := make([]string, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.API)
	}
	return out
}

func (m *EtcdMaster) RegisterPublisher(ctx context.Context, callerID, topic, msgType, callerAPI string) ([]string, error) {
	key := fmt.Sprintf(publishersPrefix, topic) + callerID
	if err := m.put(ctx, key, etcdRegistration{CallerID: callerID, API: callerAPI, MsgType: msgType}); err != nil {
		return nil, err
	}
	subs, err := m.list(ctx, fmt.Sprintf(subscribersPrefix, topic))
	if err != nil {
		return nil, err
	}
	return apiList(subs), nil
}

func (m *EtcdMaster) RegisterSubscriber(ctx context.Context, callerID, topic, msgType, callerAPI string) ([]string, error) {
	key := fmt.Sprintf(subscribersPrefix, topic) + callerID
	if err := m.put(ctx, key, etcdRegistration{CallerID: callerID, API: callerAPI, MsgType: msgType}); err != nil {
		return nil, err
	}
	pubs, err := m.list(ctx, fmt.Sprintf(publishersPrefix, topic))
	if err != nil {
		return nil, err
	}
	return apiList(pubs), nil
}

func (m *EtcdMaster) UnregisterPublisher(ctx context.Context, callerID, topic, callerAPI string) error {
	_, err := m.client.Delete(ctx, fmt.Sprintf(publishersPrefix, topic)+callerID)
	if err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	return nil
}

func (m *EtcdMaster) UnregisterSubscriber(ctx context.Context, callerID, topic, callerAPI string) error {
	_, err := m.client.Delete(ctx, fmt.Sprintf(subscribersPrefix, topic)+callerID)
	if err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	return nil
}

func (m *EtcdMaster) RegisterService(ctx context.Context, callerID, service, serviceAPI, callerAPI string) error {
	key := fmt.Sprintf(servicesPrefix, service) + callerID
	return m.put(ctx, key, etcdRegistration{CallerID: callerID, API: serviceAPI})
}

func (m *EtcdMaster) UnregisterService(ctx context.Context, callerID, service, serviceAPI string) error {
	_, err := m.client.Delete(ctx, fmt.Sprintf(servicesPrefix, service)+callerID)
	if err != nil {
		return &UnreachableError{Reason: err.Error()}
	}
	return nil
}

func (m *EtcdMaster) LookupService(ctx context.Context, callerID, service string) ([]string, error) {
	regs, err := m.list(ctx, fmt.Sprintf(servicesPrefix, service))
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, &RejectedByMasterError{Reason: "no provider for service " + service}
	}
	return apiList(regs), nil
}

// WatchPublishers streams updated publisher API lists for topic using
// etcd's server-push Watch API, re-fetching the full list on any change
// rather than reconstructing it from individual watch events. The watch
// goroutine and the underlying etcd Watch both stop when UnwatchPublishers
// is called with the returned channel.
func (m *EtcdMaster) WatchPublishers(topic string) <-chan []string {
	out := make(chan []string, 1)
	prefix := fmt.Sprintf(publishersPrefix, topic)
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	m.cancels[out] = cancel
	m.mu.Unlock()

	go func() {
		defer close(out)
		watchCh := m.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchCh {
			regs, err := m.list(ctx, prefix)
			if err != nil {
				return
			}
			select {
			case out <- apiList(regs):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// UnwatchPublishers cancels the etcd Watch and goroutine feeding ch. A
// channel already released (or never registered) is a no-op.
func (m *EtcdMaster) UnwatchPublishers(topic string, ch <-chan []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c, cancel := range m.cancels {
		if c == ch {
			cancel()
			delete(m.cancels, c)
			return
		}
	}
}

// Close releases the underlying etcd client connection.
func (m *EtcdMaster) Close() error {
	return m.client.Close()
}

