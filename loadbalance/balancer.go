// Package loadbalance selects among multiple service-providing peers when
// master.Client.LookupService resolves a service name to more than one
// advertiser (spec.md §9 design note (ii): ROS services are normally 1:1,
// but the wire protocol does not forbid redundant providers behind a name,
// and a client must still pick one deterministically).
//
// Three strategies are implemented, operating on the plain service-API
// addresses master.Client.LookupService returns:
//   - RoundRobin:      stateless providers, equal capacity
//   - WeightedRandom:  heterogeneous providers (e.g. different CPU/memory)
//   - ConsistentHash:  persistent service clients wanting provider affinity
package loadbalance

import "fmt"

// Instance is one service provider: a TCPROS address plus an optional
// relative weight (defaults to 1 when the master does not advertise one,
// since the core registration RPCs in spec.md §4.4 carry no weight field).
type Instance struct {
	Addr   string
	Weight int
}

// Balancer is the interface for load balancing strategies. ServiceClient
// calls Pick() once per lookupService resolution when more than one
// provider is returned.
type Balancer interface {
	// Pick selects one instance from the available list. Called on every
	// resolution — must be goroutine-safe.
	Pick(instances []Instance) (*Instance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

var errNoInstances = fmt.Errorf("loadbalance: no instances available")
