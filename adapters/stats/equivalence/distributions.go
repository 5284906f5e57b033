// Package equivalence implements the k-sample tests used to decide whether the
// subsets of a partition are distinguishable on an attribute: Kruskal-Wallis for
// continuous attributes and the chi-square test of independence for categorical ones.
package equivalence

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Result is the outcome of one equivalence test
type Result struct {
	Statistic        float64
	DegreesOfFreedom int
	PValue           float64
	SampleSize       int
	YatesCorrected   bool
}

// noEvidence is returned when the data cannot show any difference between groups
func noEvidence(df, n int) Result {
	return Result{Statistic: 0, DegreesOfFreedom: df, PValue: 1.0, SampleSize: n}
}

// ChiSquarePValue computes the upper tail probability of the chi-square distribution
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clampProbability(chiDist.Survival(chiSquare))
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
