package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
)

// ConsistentHashBalancer maps keys to instances using a hash ring, so the
// same key (e.g. a persistent service client's caller ID) always maps to
// the same provider until the ring membership changes — useful when a
// provider keeps per-client state a client wants to keep hitting.
//
// Virtual nodes: each real instance is mapped to N virtual nodes on the
// ring so a handful of providers still distribute evenly.
type ConsistentHashBalancer struct {
	replicas int
	ring     []uint32
	nodes    map[uint32]Instance
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per
// instance.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		replicas: 100,
		nodes:    make(map[uint32]Instance),
	}
}

// Add places an instance onto the hash ring with replicas virtual nodes.
func (b *ConsistentHashBalancer) Add(instance Instance) {
	for i := 0; i < b.replicas; i++ {
		key := fmt.Sprintf("%s#%d", instance.Addr, i)
		hash := crc32.ChecksumIEEE([]byte(key))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = instance
	}
	sort.Slice(b.ring, func(i, j int) bool { return b.ring[i] < b.ring[j] })
}

// Reset clears the ring, used when a service's provider set changes.
func (b *ConsistentHashBalancer) Reset() {
	b.ring = nil
	b.nodes = make(map[uint32]Instance)
}

// PickKey finds the instance responsible for key: hash the key, then walk
// clockwise to the first node whose hash is >= the key's hash, wrapping
// around to the first node on the ring if none is.
func (b *ConsistentHashBalancer) PickKey(key string) (*Instance, error) {
	if len(b.ring) == 0 {
		return nil, errNoInstances
	}
	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool { return b.ring[i] >= hash })
	if idx == len(b.ring) {
		idx = 0
	}
	inst := b.nodes[b.ring[idx]]
	return &inst, nil
}

// Pick satisfies Balancer by rebuilding the ring from instances and picking
// with an empty key, i.e. falling back to the first ring position — callers
// wanting real key affinity should use Add + PickKey directly.
func (b *ConsistentHashBalancer) Pick(instances []Instance) (*Instance, error) {
	if len(instances) == 0 {
		return nil, errNoInstances
	}
	b.Reset()
	for _, inst := range instances {
		b.Add(inst)
	}
	return b.PickKey("")
}

func (b *ConsistentHashBalancer) Name() string { return "ConsistentHash" }
