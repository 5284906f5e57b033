package equivalence

import "sort"

// computeRanks converts values to one-based ranks, averaging ties. It also
// returns the tie term sum(t^3 - t) over every tie group of size t.
func computeRanks(data []float64) ([]float64, float64) {
	n := len(data)
	if n == 0 {
		return []float64{}, 0
	}

	// Create index-value pairs for sorting
	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	tieTerm := 0.0

	i := 0
	for i < n {
		j := i + 1

		// Find the end of the tie group
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		if groupSize > 1 {
			t := float64(groupSize)
			tieTerm += t*t*t - t
		}

		i = j
	}

	return ranks, tieTerm
}
