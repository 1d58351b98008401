package loadbalance

import "math/rand"

// WeightedRandomBalancer selects providers probabilistically based on their
// weight. A provider with weight 10 gets roughly 2x the traffic of one with
// weight 5. Providers with a zero weight (the common case, since spec.md
// §4.4's registration RPCs carry no weight field) are treated as weight 1.
//
// Algorithm:
//  1. Sum all weights (defaulting zero to 1) → totalWeight
//  2. Generate random number r in [0, totalWeight)
//  3. Subtract each instance's weight from r until r < 0
//  4. The instance that makes r negative is selected
type WeightedRandomBalancer struct{}

func weight(i Instance) int {
	if i.Weight <= 0 {
		return 1
	}
	return i.Weight
}

func (b *WeightedRandomBalancer) Pick(instances []Instance) (*Instance, error) {
	if len(instances) == 0 {
		return nil, errNoInstances
	}

	total := 0
	for _, v := range instances {
		total += weight(v)
	}

	r := rand.Intn(total)
	for i := range instances {
		r -= weight(instances[i])
		if r < 0 {
			return &instances[i], nil
		}
	}
	return &instances[len(instances)-1], nil
}

func (b *WeightedRandomBalancer) Name() string { return "WeightedRandom" }
