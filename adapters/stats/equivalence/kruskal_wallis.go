package equivalence

import "math"

// KruskalWallisTest compares the location of k independent samples using ranks
type KruskalWallisTest struct{}

// NewKruskalWallisTest creates a Kruskal-Wallis test
func NewKruskalWallisTest() *KruskalWallisTest {
	return &KruskalWallisTest{}
}

// Name returns the test name
func (t *KruskalWallisTest) Name() string {
	return "kruskal_wallis"
}

// Test computes the tie-corrected H statistic. NaN observations are omitted and
// empty groups do not count towards the degrees of freedom. When fewer than two
// groups remain, or every observation is tied, there is nothing to distinguish
// and the result carries p = 1.
func (t *KruskalWallisTest) Test(groups [][]float64) Result {
	var (
		pooled []float64
		sizes  []int
	)
	for _, g := range groups {
		size := 0
		for _, v := range g {
			if math.IsNaN(v) {
				continue
			}
			pooled = append(pooled, v)
			size++
		}
		if size > 0 {
			sizes = append(sizes, size)
		}
	}

	n := len(pooled)
	df := len(sizes) - 1
	if df < 1 {
		return noEvidence(0, n)
	}

	ranks, tieTerm := computeRanks(pooled)

	N := float64(n)
	correction := 1 - tieTerm/(N*N*N-N)
	if correction <= 0 {
		return noEvidence(df, n)
	}

	sumTerm := 0.0
	offset := 0
	for _, size := range sizes {
		rankSum := 0.0
		for _, r := range ranks[offset : offset+size] {
			rankSum += r
		}
		sumTerm += rankSum * rankSum / float64(size)
		offset += size
	}

	h := 12.0/(N*(N+1))*sumTerm - 3*(N+1)
	h /= correction
	if h < 0 {
		// rounding on perfectly balanced samples
		h = 0
	}

	return Result{
		Statistic:        h,
		DegreesOfFreedom: df,
		PValue:           ChiSquarePValue(h, df),
		SampleSize:       n,
	}
}
