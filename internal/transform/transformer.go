// Package transform turns a (sub)dataset into the numeric frame the clustering
// engine works on: continuous columns min-max scaled to [0,1], categorical
// columns coded as first-seen integers, every other column dropped.
package transform

import (
	"fmt"
	"math"
	"strconv"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
)

// Frame is a transformed (sub)dataset. Row i describes Items[i].
type Frame struct {
	Items           []core.ItemID
	ContinuousCols  []string
	CategoricalCols []string
	// Continuous[i][j] is the scaled value of ContinuousCols[j] for row i; NaN if missing.
	Continuous [][]float64
	// Categorical[i][j] is the code of CategoricalCols[j] for row i; -1 if missing.
	Categorical [][]int
	// Codebooks maps a categorical column to its values indexed by code.
	Codebooks map[string][]string
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Items)
}

// HasContinuous reports whether any continuous column is present
func (f *Frame) HasContinuous() bool {
	return len(f.ContinuousCols) > 0
}

// HasCategorical reports whether any categorical column is present
func (f *Frame) HasCategorical() bool {
	return len(f.CategoricalCols) > 0
}

// FeatureTransformer scales and encodes the balanced columns of a dataset
type FeatureTransformer struct{}

// NewFeatureTransformer creates a transformer
func NewFeatureTransformer() *FeatureTransformer {
	return &FeatureTransformer{}
}

// Transform builds the frame for d. Scaling uses the minimum and maximum of d
// itself, so each stratum is scaled on its own range.
func (t *FeatureTransformer) Transform(d *dataset.Dataset, roles dataset.Roles) (*Frame, error) {
	continuousCols := roles.Continuous()
	categoricalCols := roles.Categorical()
	for _, c := range append(append([]string{}, continuousCols...), categoricalCols...) {
		if !d.HasColumn(c) {
			return nil, fmt.Errorf("%w: %q", core.ErrMissingColumn, c)
		}
	}

	n := d.Len()
	frame := &Frame{
		Items:           append([]core.ItemID{}, d.IDs...),
		ContinuousCols:  continuousCols,
		CategoricalCols: categoricalCols,
		Continuous:      make([][]float64, n),
		Categorical:     make([][]int, n),
		Codebooks:       make(map[string][]string, len(categoricalCols)),
	}
	for i := 0; i < n; i++ {
		frame.Continuous[i] = make([]float64, len(continuousCols))
		frame.Categorical[i] = make([]int, len(categoricalCols))
	}

	for j, col := range continuousCols {
		values, err := d.NumericColumn(col)
		if err != nil {
			return nil, err
		}
		for i, v := range MinMaxScale(values) {
			frame.Continuous[i][j] = v
		}
	}

	for j, col := range categoricalCols {
		cells, err := d.Column(col)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", core.ErrMissingColumn, col)
		}
		codes, codebook := LabelEncode(cells)
		for i, code := range codes {
			frame.Categorical[i][j] = code
		}
		frame.Codebooks[col] = codebook
	}

	return frame, nil
}

// MinMaxScale scales values to [0, 1]. NaN is passed through and ignored when
// finding the range; a constant column scales to 0.
func MinMaxScale(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case hi > lo:
			out[i] = (v - lo) / (hi - lo)
		default:
			out[i] = 0
		}
	}
	return out
}

// LabelEncode assigns each distinct value a code in first-seen order. Numeric
// spellings of the same number ("1", "1.0") share a code. Missing cells get -1.
func LabelEncode(cells []string) ([]int, []string) {
	numeric := dataset.IsNumericColumn(cells)
	unique := map[string]int{}
	var codebook []string
	codes := make([]int, len(cells))
	for i, cell := range cells {
		if dataset.IsMissing(cell) {
			codes[i] = -1
			continue
		}
		key := cell
		if numeric {
			v, _ := dataset.ParseNumber(cell)
			key = strconv.FormatFloat(v, 'g', -1, 64)
		}
		code, ok := unique[key]
		if !ok {
			code = len(unique)
			unique[key] = code
			codebook = append(codebook, key)
		}
		codes[i] = code
	}
	return codes, codebook
}
