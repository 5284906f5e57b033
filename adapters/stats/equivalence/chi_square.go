package equivalence

import "math"

// ChiSquareTest is the chi-square test of independence on a contingency table
type ChiSquareTest struct {
	// Correction applies Yates' continuity correction when the table has one
	// degree of freedom.
	Correction bool
}

// NewChiSquareTest creates a chi-square test with continuity correction enabled
func NewChiSquareTest() *ChiSquareTest {
	return &ChiSquareTest{Correction: true}
}

// Name returns the test name
func (t *ChiSquareTest) Name() string {
	return "chi_square"
}

// Test computes the statistic for table[row][col]. Rows and columns whose
// marginal total is zero carry no information and are dropped before the
// expected frequencies are formed.
func (t *ChiSquareTest) Test(table [][]int) Result {
	table = dropEmptyMargins(table)
	rows := len(table)
	if rows == 0 {
		return noEvidence(0, 0)
	}
	cols := len(table[0])

	total := 0
	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rowTotals[i] += table[i][j]
			colTotals[j] += table[i][j]
			total += table[i][j]
		}
	}

	df := (rows - 1) * (cols - 1)
	if df < 1 {
		return noEvidence(0, total)
	}

	yates := t.Correction && df == 1
	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := float64(rowTotals[i]) * float64(colTotals[j]) / float64(total)
			diff := float64(table[i][j]) - expected
			if yates {
				diff = math.Copysign(math.Max(math.Abs(diff)-0.5, 0), diff)
			}
			chiSq += diff * diff / expected
		}
	}

	return Result{
		Statistic:        chiSq,
		DegreesOfFreedom: df,
		PValue:           ChiSquarePValue(chiSq, df),
		SampleSize:       total,
		YatesCorrected:   yates,
	}
}

func dropEmptyMargins(table [][]int) [][]int {
	if len(table) == 0 {
		return nil
	}
	cols := len(table[0])
	colTotals := make([]int, cols)
	var rows [][]int
	for _, row := range table {
		sum := 0
		for j := 0; j < cols && j < len(row); j++ {
			sum += row[j]
			colTotals[j] += row[j]
		}
		if sum > 0 {
			rows = append(rows, row)
		}
	}

	var keep []int
	for j, total := range colTotals {
		if total > 0 {
			keep = append(keep, j)
		}
	}

	out := make([][]int, len(rows))
	for i, row := range rows {
		out[i] = make([]int, len(keep))
		for k, j := range keep {
			if j < len(row) {
				out[i][k] = row[j]
			}
		}
	}
	return out
}
