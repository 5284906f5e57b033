package cluster

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"testing"

	"setsplit/domain/core"
	"setsplit/domain/partition"
	"setsplit/internal/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = partition.ClusterSettings{MaxClusters: 10, SilhouetteSample: 1000, MaxIter: 100}

func numericFrame(values ...float64) *transform.Frame {
	f := &transform.Frame{ContinuousCols: []string{"x"}}
	for i, v := range values {
		f.Items = append(f.Items, core.ItemID(100+i))
		f.Continuous = append(f.Continuous, []float64{v})
		f.Categorical = append(f.Categorical, []int{})
	}
	return f
}

func covered(t *testing.T, clusters []partition.Cluster) []core.ItemID {
	t.Helper()
	var all []core.ItemID
	for _, c := range clusters {
		require.NotEmpty(t, c)
		all = append(all, c...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

func TestSelectStrategy(t *testing.T) {
	assert.Equal(t, "euclidean", SelectStrategy(&transform.Frame{ContinuousCols: []string{"a"}}).Name())
	assert.Equal(t, "mismatch", SelectStrategy(&transform.Frame{CategoricalCols: []string{"b"}}).Name())
	assert.Equal(t, "mixed", SelectStrategy(&transform.Frame{
		ContinuousCols: []string{"a"}, CategoricalCols: []string{"b"},
	}).Name())
}

func TestStrategies_Distance(t *testing.T) {
	a := Point{Num: []float64{0, 0}, Cat: []int{1, 2}}
	b := Point{Num: []float64{3, 4}, Cat: []int{1, 3}}

	assert.InDelta(t, 5.0, Euclidean{}.Distance(a, b), 1e-12)
	assert.Equal(t, 1.0, Mismatch{}.Distance(a, b))
	assert.InDelta(t, 26.0, Mixed{Gamma: 1}.Distance(a, b), 1e-12)
}

func TestStrategies_Prototype(t *testing.T) {
	members := []Point{
		{Num: []float64{0}, Cat: []int{2}},
		{Num: []float64{1}, Cat: []int{1}},
		{Num: []float64{2}, Cat: []int{2}},
		{Num: []float64{3}, Cat: []int{1}},
	}
	proto := Mixed{Gamma: 1}.Prototype(members)
	assert.Equal(t, []float64{1.5}, proto.Num)
	// tie between codes 1 and 2 goes to the lower code
	assert.Equal(t, []int{1}, proto.Cat)
}

func TestKPrototypes_SeparatesObviousGroups(t *testing.T) {
	points := Points(numericFrame(0, 0.01, 0.02, 0.98, 0.99, 1))
	labels, err := NewKPrototypes(2, 50, Euclidean{}).Fit(points, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[1], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[4], labels[5])
	assert.NotEqual(t, labels[0], labels[5])
}

func TestKPrototypes_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := NewKPrototypes(3, 10, Euclidean{}).Fit(Points(numericFrame(1, 2)), rng)
	assert.ErrorIs(t, err, core.ErrDegenerateClustering)

	_, err = NewKPrototypes(2, 10, Euclidean{}).Fit(Points(numericFrame(1, math.NaN(), 3, 4)), rng)
	assert.ErrorIs(t, err, core.ErrNotFinite)
}

func TestKPrototypes_IdenticalPoints(t *testing.T) {
	points := Points(numericFrame(0.5, 0.5, 0.5, 0.5))
	labels, err := NewKPrototypes(2, 10, Euclidean{}).Fit(points, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Len(t, labels, 4)
}

func TestSilhouette(t *testing.T) {
	points := Points(numericFrame(0, 0, 1, 1))

	score, ok := Silhouette(points, []int{0, 0, 1, 1}, Euclidean{}, 1000, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-12)

	_, ok = Silhouette(points, []int{0, 0, 0, 0}, Euclidean{}, 1000, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
	_, ok = Silhouette(points, []int{0, 1, 2, 3}, Euclidean{}, 1000, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestEngine_ClustersCoverStratum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 40)
	for i := range values {
		values[i] = rng.Float64()
	}
	frame := numericFrame(values...)

	clusters, err := NewEngine(nil).Cluster(context.Background(), frame, defaults, rng)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(clusters), 2)
	assert.LessOrEqual(t, len(clusters), 10)
	assert.Equal(t, frame.Items, covered(t, clusters))
}

func TestEngine_MixedFrame(t *testing.T) {
	frame := &transform.Frame{ContinuousCols: []string{"x"}, CategoricalCols: []string{"c"}}
	for i := 0; i < 12; i++ {
		frame.Items = append(frame.Items, core.ItemID(i))
		frame.Continuous = append(frame.Continuous, []float64{float64(i%3) / 2})
		frame.Categorical = append(frame.Categorical, []int{i % 2})
	}

	clusters, err := NewEngine(nil).Cluster(context.Background(), frame, defaults, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	assert.Equal(t, frame.Items, covered(t, clusters))
}

func TestEngine_DegenerateFallsBackToSingleCluster(t *testing.T) {
	engine := NewEngine(nil)
	rng := rand.New(rand.NewSource(1))

	// three items: range [2, 1] is empty
	clusters, err := engine.Cluster(context.Background(), numericFrame(1, 2, 3), defaults, rng)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 3)

	// a missing value makes the fit fail
	clusters, err = engine.Cluster(context.Background(), numericFrame(1, math.NaN(), 3, 4, 5, 6), defaults, rng)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 6)
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(nil).Cluster(ctx, numericFrame(1, 2, 3, 4, 5, 6), defaults, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_SettingsBoundClusterCount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i % 6)
	}
	frame := numericFrame(values...)

	clusters, err := NewEngine(nil).Cluster(context.Background(), frame,
		partition.ClusterSettings{MaxClusters: 2, SilhouetteSample: 100, MaxIter: 20}, rng)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(clusters), 2)
	assert.Equal(t, frame.Items, covered(t, clusters))
}

func TestWithDefaults(t *testing.T) {
	assert.Equal(t, defaults, withDefaults(partition.ClusterSettings{}))
	custom := partition.ClusterSettings{MaxClusters: 3, SilhouetteSample: 50, MaxIter: 7}
	assert.Equal(t, custom, withDefaults(custom))
}
