// Package partition defines the values that flow through one balancing run:
// clusters, subsets, equivalence test results and the retry state machine.
package partition

import (
	"fmt"

	"setsplit/domain/core"
)

// OverallStratum labels results computed over the pooled dataset
const OverallStratum = "overall"

// SetColumn is the column appended to the dataset on output
const SetColumn = "set_number"

// Cluster is a set of items grouped by similarity within one stratum
type Cluster []core.ItemID

// Subset is one of the N target partitions
type Subset []core.ItemID

// Stratum is a group of items sharing one absolute value
type Stratum struct {
	Label string
	Items []core.ItemID
}

// TestKind names the equivalence test behind a result
type TestKind string

const (
	TestKruskalWallis TestKind = "kruskal_wallis"
	TestChiSquare     TestKind = "chi_square"
)

// DisplayName returns the human-readable test name
func (k TestKind) DisplayName() string {
	switch k {
	case TestKruskalWallis:
		return "Kruskal-Wallis"
	case TestChiSquare:
		return "Chi-square"
	default:
		return string(k)
	}
}

// ContingencyTable counts attribute values per subset. Counts[i][j] is the number
// of items with Categories[i] in subset j.
type ContingencyTable struct {
	Categories []string
	Counts     [][]int
}

// StatResult is one equivalence test of one attribute across the subsets
type StatResult struct {
	Stratum          string
	Kind             TestKind
	Attribute        string
	Statistic        float64
	DegreesOfFreedom int
	PValue           float64
	SampleSize       int
	Missing          int
	YatesCorrected   bool
	Table            *ContingencyTable
}

// Passes reports whether the result meets the threshold. Exactly equal passes.
func (r StatResult) Passes(threshold float64) bool {
	return r.PValue >= threshold
}

func (r StatResult) String() string {
	return fmt.Sprintf("%s [%s] %s(%d)=%.3f p=%.3f",
		r.Attribute, r.Stratum, r.Kind.DisplayName(), r.DegreesOfFreedom, r.Statistic, r.PValue)
}

// Balanced reports whether every result passes the threshold. An empty list is balanced.
func Balanced(results []StatResult, threshold float64) bool {
	for _, r := range results {
		if !r.Passes(threshold) {
			return false
		}
	}
	return true
}

// Failing returns the results below the threshold
func Failing(results []StatResult, threshold float64) []StatResult {
	var out []StatResult
	for _, r := range results {
		if !r.Passes(threshold) {
			out = append(out, r)
		}
	}
	return out
}

// Assignment maps each item to its one-based set number
type Assignment map[core.ItemID]int

// NewAssignment numbers subsets from 1
func NewAssignment(subsets []Subset) Assignment {
	a := make(Assignment)
	for i, s := range subsets {
		for _, id := range s {
			a[id] = i + 1
		}
	}
	return a
}

// Sizes returns the cardinality of each subset
func Sizes(subsets []Subset) []int {
	sizes := make([]int, len(subsets))
	for i, s := range subsets {
		sizes[i] = len(s)
	}
	return sizes
}

// Merge unions per-stratum subsets index by index: the k-th merged subset is the
// union of every stratum's k-th subset.
func Merge(perStratum [][]Subset, n int) ([]Subset, error) {
	merged := make([]Subset, n)
	seen := make(map[core.ItemID]bool)
	for s, subsets := range perStratum {
		if len(subsets) != n {
			return nil, fmt.Errorf("stratum %d produced %d subsets, want %d", s, len(subsets), n)
		}
		for k, subset := range subsets {
			for _, id := range subset {
				if seen[id] {
					return nil, fmt.Errorf("item %d assigned twice", id)
				}
				seen[id] = true
				merged[k] = append(merged[k], id)
			}
		}
	}
	return merged, nil
}
