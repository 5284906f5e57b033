package allocate

import (
	"math/rand"
	"sort"
	"testing"

	"setsplit/domain/core"
	"setsplit/domain/partition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(from, to int) partition.Cluster {
	var c partition.Cluster
	for i := from; i < to; i++ {
		c = append(c, core.ItemID(i))
	}
	return c
}

func TestAllocate_GreedyLowestIndex(t *testing.T) {
	subsets, err := Allocate([]partition.Cluster{ids(0, 5)}, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, partition.Subset{0, 2, 4}, subsets[0])
	assert.Equal(t, partition.Subset{1, 3}, subsets[1])
}

func TestAllocate_IndexNotValue(t *testing.T) {
	// two empty subsets are equal by value; the first index must still win
	subsets, err := Allocate([]partition.Cluster{{7}}, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, partition.Sizes(subsets))
}

func TestAllocate_CoverageAndBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		var clusters []partition.Cluster
		next := 0
		for c := 0; c < 1+rng.Intn(8); c++ {
			size := 1 + rng.Intn(12)
			clusters = append(clusters, ids(next, next+size))
			next += size
		}
		n := 2 + rng.Intn(9)

		subsets, err := Allocate(clusters, n, rng)
		require.NoError(t, err)
		require.Len(t, subsets, n)

		var all []core.ItemID
		for _, s := range subsets {
			all = append(all, s...)
		}
		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
		assert.Equal(t, []core.ItemID(ids(0, next)), all)
		assert.LessOrEqual(t, SizeSpread(subsets), LargestCluster(clusters))
	}
}

func TestAllocate_SeededOrderIsReproducible(t *testing.T) {
	clusters := []partition.Cluster{ids(0, 3), ids(3, 4), ids(4, 9)}
	a, err := Allocate(clusters, 2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := Allocate(clusters, 2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAllocateOnto_TiesFollowMergedSizes(t *testing.T) {
	// subset 0 already holds one more item than subset 1
	subsets, err := AllocateOnto([]partition.Cluster{ids(0, 3)}, 2, []int{5, 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, partition.Subset{1}, subsets[0])
	assert.Equal(t, partition.Subset{0, 2}, subsets[1])
}

func TestAllocateOnto_OddStrataStayEven(t *testing.T) {
	merged := make([]int, 2)
	for stratum := 0; stratum < 6; stratum++ {
		subsets, err := AllocateOnto([]partition.Cluster{ids(stratum*3, stratum*3+3)}, 2, merged, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, SizeSpread(subsets), 3)
		for k, s := range subsets {
			merged[k] += len(s)
		}
	}
	assert.Equal(t, []int{9, 9}, merged)
}

func TestAllocateOnto_MergedLengthMismatch(t *testing.T) {
	_, err := AllocateOnto([]partition.Cluster{ids(0, 2)}, 3, []int{1, 1}, nil)
	assert.Error(t, err)
}

func TestAllocate_TooFewSets(t *testing.T) {
	_, err := Allocate([]partition.Cluster{ids(0, 4)}, 1, nil)
	assert.ErrorIs(t, err, core.ErrTooFewSets)
}
