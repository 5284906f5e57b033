// Package verify tests whether the subsets of a partition are distinguishable
// on any balanced attribute.
package verify

import (
	"fmt"
	"math"

	"setsplit/adapters/stats/equivalence"
	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"
	"setsplit/internal/transform"
)

// BalanceVerifier runs one Kruskal-Wallis test per continuous attribute and one
// chi-square test per categorical attribute, per stratum and overall. It never
// mutates its inputs.
type BalanceVerifier struct {
	kruskal   *equivalence.KruskalWallisTest
	chiSquare *equivalence.ChiSquareTest
}

// NewBalanceVerifier creates a verifier with continuity correction on 2x2 tables
func NewBalanceVerifier() *BalanceVerifier {
	return &BalanceVerifier{
		kruskal:   equivalence.NewKruskalWallisTest(),
		chiSquare: equivalence.NewChiSquareTest(),
	}
}

// Verify tests the assignment of d's items to n subsets. Values are read from d
// unscaled. When strata holds more than one stratum each is tested on its own
// items before the pooled overall tests.
func (v *BalanceVerifier) Verify(d *dataset.Dataset, assignment partition.Assignment, n int,
	continuous, categorical []string, strata []partition.Stratum) ([]partition.StatResult, error) {

	numeric := make(map[string][]float64, len(continuous))
	for _, col := range continuous {
		values, err := d.NumericColumn(col)
		if err != nil {
			return nil, err
		}
		numeric[col] = values
	}
	cells := make(map[string][]string, len(categorical))
	for _, col := range categorical {
		values, err := d.Column(col)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", core.ErrMissingColumn, col)
		}
		cells[col] = values
	}

	type scope struct {
		label string
		items []core.ItemID
	}
	var scopes []scope
	if len(strata) > 1 {
		for _, s := range strata {
			scopes = append(scopes, scope{s.Label, s.Items})
		}
	}
	scopes = append(scopes, scope{partition.OverallStratum, d.IDs})

	var results []partition.StatResult
	for _, sc := range scopes {
		positions := make([]int, 0, len(sc.items))
		sets := make([]int, 0, len(sc.items))
		for _, id := range sc.items {
			pos, ok := d.Position(id)
			if !ok {
				return nil, fmt.Errorf("item %d not present in dataset", id)
			}
			set, ok := assignment[id]
			if !ok || set < 1 || set > n {
				return nil, fmt.Errorf("item %d has no subset in 1..%d", id, n)
			}
			positions = append(positions, pos)
			sets = append(sets, set)
		}

		for _, col := range continuous {
			results = append(results, v.continuousResult(sc.label, col, numeric[col], positions, sets, n))
		}
		for _, col := range categorical {
			results = append(results, v.categoricalResult(sc.label, col, cells[col], positions, sets, n))
		}
	}
	return results, nil
}

func (v *BalanceVerifier) continuousResult(stratum, col string, values []float64, positions, sets []int, n int) partition.StatResult {
	groups := make([][]float64, n)
	missing := 0
	for i, pos := range positions {
		if math.IsNaN(values[pos]) {
			missing++
			continue
		}
		groups[sets[i]-1] = append(groups[sets[i]-1], values[pos])
	}
	r := v.kruskal.Test(groups)
	return partition.StatResult{
		Stratum:          stratum,
		Kind:             partition.TestKruskalWallis,
		Attribute:        col,
		Statistic:        r.Statistic,
		DegreesOfFreedom: r.DegreesOfFreedom,
		PValue:           r.PValue,
		SampleSize:       r.SampleSize,
		Missing:          missing,
	}
}

func (v *BalanceVerifier) categoricalResult(stratum, col string, cells []string, positions, sets []int, n int) partition.StatResult {
	scoped := make([]string, len(positions))
	for i, pos := range positions {
		scoped[i] = cells[pos]
	}
	codes, categories := transform.LabelEncode(scoped)

	counts := make([][]int, len(categories))
	for i := range counts {
		counts[i] = make([]int, n)
	}
	missing := 0
	for i, code := range codes {
		if code < 0 {
			missing++
			continue
		}
		counts[code][sets[i]-1]++
	}

	r := v.chiSquare.Test(counts)
	return partition.StatResult{
		Stratum:          stratum,
		Kind:             partition.TestChiSquare,
		Attribute:        col,
		Statistic:        r.Statistic,
		DegreesOfFreedom: r.DegreesOfFreedom,
		PValue:           r.PValue,
		SampleSize:       r.SampleSize,
		Missing:          missing,
		YatesCorrected:   r.YatesCorrected,
		Table:            &partition.ContingencyTable{Categories: categories, Counts: counts},
	}
}
