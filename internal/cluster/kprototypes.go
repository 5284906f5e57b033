package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"setsplit/domain/core"
)

// KPrototypes partitions points into K groups around prototypes computed by the
// strategy: means for continuous fields, modes for categorical ones.
type KPrototypes struct {
	K        int
	MaxIter  int
	Strategy Strategy

	Prototypes []Point
	// Cost is the sum of distances from each point to its prototype
	Cost float64
}

// NewKPrototypes creates a model with k groups
func NewKPrototypes(k, maxIter int, strategy Strategy) *KPrototypes {
	return &KPrototypes{K: k, MaxIter: maxIter, Strategy: strategy}
}

// Fit assigns every point to one of K groups and returns the labels. Seeding is
// k-means++ over the strategy's dissimilarity using rng.
func (m *KPrototypes) Fit(points []Point, rng *rand.Rand) ([]int, error) {
	n := len(points)
	if m.K < 2 || n < m.K {
		return nil, fmt.Errorf("%w: %d items for k=%d", core.ErrDegenerateClustering, n, m.K)
	}
	if !finite(points) {
		return nil, core.ErrNotFinite
	}

	m.Prototypes = m.initPrototypes(points, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}
	for it := 0; it < maxIter; it++ {
		changed := false
		m.Cost = 0
		for i, p := range points {
			best, bestDist := m.nearest(p)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
			m.Cost += bestDist
		}
		if !changed {
			break
		}

		members := make([][]Point, m.K)
		for i, k := range labels {
			members[k] = append(members[k], points[i])
		}
		for k := range members {
			// an emptied group keeps its previous prototype
			if len(members[k]) > 0 {
				m.Prototypes[k] = m.Strategy.Prototype(members[k])
			}
		}
	}
	if math.IsNaN(m.Cost) {
		return nil, core.ErrNotFinite
	}
	return labels, nil
}

func (m *KPrototypes) nearest(p Point) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for k, proto := range m.Prototypes {
		if d := m.Strategy.Distance(p, proto); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, bestDist
}

// initPrototypes picks the first prototype uniformly and each next one with
// probability proportional to its squared distance from the nearest chosen one.
func (m *KPrototypes) initPrototypes(points []Point, rng *rand.Rand) []Point {
	n := len(points)
	chosen := make([]bool, n)
	protos := make([]Point, 0, m.K)

	first := rng.Intn(n)
	chosen[first] = true
	protos = append(protos, points[first])

	distSq := make([]float64, n)
	for len(protos) < m.K {
		total := 0.0
		for i, p := range points {
			minDist := math.Inf(1)
			for _, c := range protos {
				if d := m.Strategy.Distance(p, c); d < minDist {
					minDist = d
				}
			}
			distSq[i] = minDist * minDist
			total += distSq[i]
		}

		next := -1
		if total > 0 {
			r := rng.Float64() * total
			cumulative := 0.0
			for i, d2 := range distSq {
				cumulative += d2
				if d2 > 0 && cumulative >= r {
					next = i
					break
				}
			}
		}
		if next < 0 {
			// every remaining point coincides with a prototype
			remaining := make([]int, 0, n-len(protos))
			for i := range points {
				if !chosen[i] {
					remaining = append(remaining, i)
				}
			}
			next = remaining[rng.Intn(len(remaining))]
		}
		chosen[next] = true
		protos = append(protos, points[next])
	}
	return protos
}
