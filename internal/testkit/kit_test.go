package testkit

import (
	"testing"

	"setsplit/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStimuli_Columns(t *testing.T) {
	d, roles, err := NewTestKit(1).Stimuli(StimulusConfig{
		Continuous:  2,
		Categorical: []int{3},
		Strata:      []int{4, 0, 6},
		Missing:     5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"word", "cont_1", "cont_2", "cat_1", "group"}, d.Headers)
	assert.Equal(t, 10, d.Len())
	assert.Equal(t, []string{"cont_1", "cont_2"}, roles.Continuous())
	assert.Equal(t, []string{"cat_1"}, roles.Categorical())
	absolute, ok := roles.Absolute()
	require.True(t, ok)
	assert.Equal(t, "group", absolute)

	groups, err := d.Column("group")
	require.NoError(t, err)
	assert.Equal(t, "G1", groups[0])
	assert.Equal(t, "G3", groups[4])

	cont, err := d.Column("cont_1")
	require.NoError(t, err)
	assert.True(t, dataset.IsMissing(cont[4]))
	assert.False(t, dataset.IsMissing(cont[3]))
}

func TestStimuli_SeedIsReproducible(t *testing.T) {
	cfg := StimulusConfig{Items: 12, Continuous: 1, Categorical: []int{2}, Seed: 9}
	a, _, err := NewTestKit(1).Stimuli(cfg)
	require.NoError(t, err)
	b, _, err := NewTestKit(2).Stimuli(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestPlan_Defaults(t *testing.T) {
	kit := NewTestKit(1)
	d, roles, err := kit.Stimuli(StimulusConfig{Items: 8, Continuous: 1})
	require.NoError(t, err)

	plan := kit.Plan(d, roles, 2, 5)
	require.NoError(t, plan.Validate())
	assert.Equal(t, 21, plan.MaxCycles())
	assert.Equal(t, 0.2, plan.Threshold)
}
