// Package allocate distributes clustered items across the target subsets.
package allocate

import (
	"fmt"
	"math/rand"

	"setsplit/domain/core"
	"setsplit/domain/partition"
)

// Allocate spreads the items of clusters over n subsets. Clusters are visited in
// an order shuffled by rng (in their given order when rng is nil) and every item
// goes to the subset with the fewest items, the lowest index winning ties. Sizes
// then differ by at most the size of the largest cluster.
func Allocate(clusters []partition.Cluster, n int, rng *rand.Rand) ([]partition.Subset, error) {
	return AllocateOnto(clusters, n, nil, rng)
}

// AllocateOnto is Allocate for one stratum of a larger dataset. merged holds
// the sizes the n subsets already have from earlier strata; ties between
// subsets with equally many items of this stratum go to the smaller merged
// subset, then to the lowest index. merged is not modified; nil means all zero.
func AllocateOnto(clusters []partition.Cluster, n int, merged []int, rng *rand.Rand) ([]partition.Subset, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", core.ErrTooFewSets, n)
	}
	if merged != nil && len(merged) != n {
		return nil, fmt.Errorf("merged sizes cover %d subsets, want %d", len(merged), n)
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	base := make([]int, n)
	copy(base, merged)
	subsets := make([]partition.Subset, n)
	for _, c := range order {
		for _, id := range clusters[c] {
			k := smallest(subsets, base)
			subsets[k] = append(subsets[k], id)
		}
	}
	return subsets, nil
}

// smallest returns the index of the subset with the fewest items, breaking
// ties by the merged size
func smallest(subsets []partition.Subset, base []int) int {
	best := 0
	for k := 1; k < len(subsets); k++ {
		size, bestSize := len(subsets[k]), len(subsets[best])
		if size < bestSize || (size == bestSize && base[k]+size < base[best]+bestSize) {
			best = k
		}
	}
	return best
}

// SizeSpread returns max minus min subset size
func SizeSpread(subsets []partition.Subset) int {
	if len(subsets) == 0 {
		return 0
	}
	lo, hi := len(subsets[0]), len(subsets[0])
	for _, s := range subsets[1:] {
		lo = min(lo, len(s))
		hi = max(hi, len(s))
	}
	return hi - lo
}

// LargestCluster returns the size of the largest cluster
func LargestCluster(clusters []partition.Cluster) int {
	largest := 0
	for _, c := range clusters {
		largest = max(largest, len(c))
	}
	return largest
}
