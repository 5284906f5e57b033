package cluster

import (
	"math/rand"
)

// Silhouette returns the mean silhouette coefficient of labels under strategy.
// When there are more than sample points a random sample of that size is scored.
// ok is false when the sample holds fewer than 2 or as many labels as points.
func Silhouette(points []Point, labels []int, strategy Strategy, sample int, rng *rand.Rand) (score float64, ok bool) {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	if sample > 0 && len(points) > sample {
		idx = rng.Perm(len(points))[:sample]
	}

	sizes := make(map[int]int)
	for _, i := range idx {
		sizes[labels[i]]++
	}
	if len(sizes) < 2 || len(sizes) >= len(idx) {
		return 0, false
	}

	total := 0.0
	for _, i := range idx {
		own := labels[i]
		if sizes[own] == 1 {
			continue
		}
		sums := make(map[int]float64, len(sizes))
		for _, j := range idx {
			if i != j {
				sums[labels[j]] += strategy.Distance(points[i], points[j])
			}
		}
		a := sums[own] / float64(sizes[own]-1)
		b := -1.0
		for label, size := range sizes {
			if label == own {
				continue
			}
			if mean := sums[label] / float64(size); b < 0 || mean < b {
				b = mean
			}
		}
		if denom := max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(idx)), true
}
