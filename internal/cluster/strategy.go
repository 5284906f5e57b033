// Package cluster groups the items of one stratum by similarity. A single
// k-prototypes style algorithm runs behind a Strategy that supplies the
// dissimilarity for the feature types present.
package cluster

import (
	"math"

	"setsplit/internal/transform"

	"gonum.org/v1/gonum/floats"
)

// Point is one item's features: scaled continuous values and categorical codes
type Point struct {
	Num []float64
	Cat []int
}

// Strategy measures dissimilarity between points and builds cluster prototypes
type Strategy interface {
	Name() string
	Distance(a, b Point) float64
	Prototype(members []Point) Point
}

// SelectStrategy picks the regime from the columns present in the frame
func SelectStrategy(frame *transform.Frame) Strategy {
	switch {
	case frame.HasContinuous() && frame.HasCategorical():
		return Mixed{Gamma: 1}
	case frame.HasCategorical():
		return Mismatch{}
	default:
		return Euclidean{}
	}
}

// Points converts frame rows to points
func Points(frame *transform.Frame) []Point {
	points := make([]Point, frame.Len())
	for i := range points {
		points[i] = Point{Num: frame.Continuous[i], Cat: frame.Categorical[i]}
	}
	return points
}

// Euclidean is the all-continuous regime
type Euclidean struct{}

func (Euclidean) Name() string { return "euclidean" }

func (Euclidean) Distance(a, b Point) float64 {
	if len(a.Num) == 0 {
		return 0
	}
	return floats.Distance(a.Num, b.Num, 2)
}

func (Euclidean) Prototype(members []Point) Point {
	return Point{Num: meanOf(members)}
}

// Mismatch is the all-categorical regime: the number of differing codes
type Mismatch struct{}

func (Mismatch) Name() string { return "mismatch" }

func (Mismatch) Distance(a, b Point) float64 {
	return float64(mismatches(a.Cat, b.Cat))
}

func (Mismatch) Prototype(members []Point) Point {
	return Point{Cat: modeOf(members)}
}

// Mixed adds squared Euclidean distance on continuous fields to Gamma times
// the mismatch count on categorical fields.
type Mixed struct {
	Gamma float64
}

func (Mixed) Name() string { return "mixed" }

func (m Mixed) Distance(a, b Point) float64 {
	d := 0.0
	if len(a.Num) > 0 {
		e := floats.Distance(a.Num, b.Num, 2)
		d = e * e
	}
	return d + m.Gamma*float64(mismatches(a.Cat, b.Cat))
}

func (Mixed) Prototype(members []Point) Point {
	return Point{Num: meanOf(members), Cat: modeOf(members)}
}

func mismatches(a, b []int) int {
	n := 0
	for j := range a {
		if a[j] != b[j] {
			n++
		}
	}
	return n
}

func meanOf(members []Point) []float64 {
	if len(members) == 0 || len(members[0].Num) == 0 {
		return nil
	}
	sum := make([]float64, len(members[0].Num))
	for _, p := range members {
		floats.Add(sum, p.Num)
	}
	floats.Scale(1/float64(len(members)), sum)
	return sum
}

// modeOf takes the most frequent code per column; ties go to the lower code
func modeOf(members []Point) []int {
	if len(members) == 0 || len(members[0].Cat) == 0 {
		return nil
	}
	mode := make([]int, len(members[0].Cat))
	for j := range mode {
		counts := make(map[int]int)
		for _, p := range members {
			counts[p.Cat[j]]++
		}
		best, bestCount := math.MaxInt, -1
		for code, c := range counts {
			if c > bestCount || (c == bestCount && code < best) {
				best, bestCount = code, c
			}
		}
		mode[j] = best
	}
	return mode
}

// finite reports whether every continuous value is a number
func finite(points []Point) bool {
	for _, p := range points {
		if floats.HasNaN(p.Num) {
			return false
		}
		for _, v := range p.Num {
			if math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
