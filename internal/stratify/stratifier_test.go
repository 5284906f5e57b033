package stratify

import (
	"errors"
	"testing"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stimuli(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.New("in.csv", []string{"word", "list", "freq"}, [][]string{
		{"cat", "B", "1"},
		{"dog", "A", "2"},
		{"run", "B", "3"},
		{"eat", "", "4"},
		{"sit", "A", "5"},
	})
	require.NoError(t, err)
	return d
}

func TestSplit_FirstSeenOrder(t *testing.T) {
	groups, err := Split(stimuli(t), "list")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "B", groups[0].Stratum.Label)
	assert.Equal(t, []core.ItemID{0, 2}, groups[0].Stratum.Items)
	assert.Equal(t, "A", groups[1].Stratum.Label)
	assert.Equal(t, []core.ItemID{1, 4}, groups[1].Stratum.Items)
	// an empty value is a stratum of its own
	assert.Equal(t, "", groups[2].Stratum.Label)
	assert.Equal(t, []core.ItemID{3}, groups[2].Stratum.Items)

	for _, g := range groups {
		assert.False(t, g.Data.HasColumn("list"))
		assert.Equal(t, g.Stratum.Items, g.Data.IDs)
	}
	assert.Equal(t, []string{"run", "3"}, groups[0].Data.Rows[1])
}

func TestSplit_NoColumn(t *testing.T) {
	d := stimuli(t)
	groups, err := Split(d, "")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, partition.OverallStratum, groups[0].Stratum.Label)
	assert.Equal(t, d.IDs, groups[0].Stratum.Items)
	assert.Same(t, d, groups[0].Data)
}

func TestSplit_UnknownColumn(t *testing.T) {
	_, err := Split(stimuli(t), "ghost")
	assert.True(t, errors.Is(err, core.ErrUnknownColumn))
}
