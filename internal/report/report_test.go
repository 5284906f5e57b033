package report

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"setsplit/adapters/excel"
	"setsplit/app"
	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"
	"setsplit/domain/run"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(t *testing.T, state partition.State) (*app.Outcome, *dataset.Dataset) {
	t.Helper()
	d, err := dataset.New("words.csv", []string{"word", "freq", "class"}, [][]string{
		{"cat", "1", "noun"},
		{"dog", "3", "verb"},
		{"run", "", "noun"},
		{"eat", "5", "verb"},
	})
	require.NoError(t, err)

	subsets := []partition.Subset{{0, 2}, {1, 3}}
	assignment := partition.NewAssignment(subsets)
	annotated, err := app.Annotate(d, assignment)
	require.NoError(t, err)

	results := []partition.StatResult{
		{Stratum: partition.OverallStratum, Kind: partition.TestKruskalWallis, Attribute: "freq",
			Statistic: 2, DegreesOfFreedom: 1, PValue: 0.157, SampleSize: 3, Missing: 1},
		{Stratum: partition.OverallStratum, Kind: partition.TestChiSquare, Attribute: "class",
			Statistic: 0, DegreesOfFreedom: 1, PValue: 1, SampleSize: 4, YatesCorrected: true,
			Table: &partition.ContingencyTable{Categories: []string{"noun", "verb"}, Counts: [][]int{{2, 0}, {0, 2}}}},
	}
	return &app.Outcome{
		Manifest:    run.NewManifest("words.csv", core.ComputeDatasetHash(d.Headers, d.Rows), "", 2, 42, 1),
		State:       state,
		Iterations:  21,
		Threshold:   0.2,
		MaxRetries:  20,
		Continuous:  []string{"freq"},
		Categorical: []string{"class"},
		Subsets:     subsets,
		Assignment:  assignment,
		Results:     results,
		History: []app.Iteration{
			{Cycle: 1, Sizes: []int{2, 2}, LargestCluster: 2, Failing: results[:1], State: state},
		},
		Warnings:  []string{"something odd"},
		Annotated: annotated,
	}, d
}

func TestRender_Exhausted(t *testing.T) {
	o, d := outcome(t, partition.StateExhausted)

	text, err := Render(o, d)
	require.NoError(t, err)

	assert.Contains(t, text, "Number of iterations: 21")
	assert.Contains(t, text, "retry cap of 20 was reached")
	assert.Contains(t, text, "- Seed: 42")
	assert.Contains(t, text, "'freq' Kruskal-Wallis (X2(1) = 2.000, p = 0.157) [1 missing omitted, below threshold];")
	assert.Contains(t, text, "'class' Chi-square (X2(1) = 0.000, p = 1.000) [Yates corrected];")
	assert.Contains(t, text, "| noun | 2 | 0 |")
	// set 1 holds freq 1 and a missing value
	assert.Contains(t, text, "| 1 | 1 | 1.000 | n/a | 1.000 |")
	assert.Contains(t, text, "| 2 | 2 | 4.000 | 1.414 | 4.000 |")
	assert.Contains(t, text, "overall/freq p=0.157")
	assert.Contains(t, text, "- something odd")
	assert.Equal(t, 1, strings.Count(text, "### Stratum: overall"))
}

func TestRender_Accepted(t *testing.T) {
	o, d := outcome(t, partition.StateAccepted)
	text, err := Render(o, d)
	require.NoError(t, err)
	assert.Contains(t, text, "Status: balanced")
	assert.NotContains(t, text, "retry cap")
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, 2, 3, math.NaN()})
	assert.Equal(t, 3, s.N)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.SD, 1e-12)
	assert.InDelta(t, 2.0, s.Median, 1e-12)

	empty := Describe(nil)
	assert.Equal(t, 0, empty.N)
	assert.True(t, math.IsNaN(empty.Mean))
}

func TestArtifactPaths(t *testing.T) {
	single := ArtifactPaths("out", "output.csv", "statistics.txt", false, 1, 1)
	assert.Equal(t, filepath.Join("out", "output.csv"), single.Data)
	assert.Equal(t, filepath.Join("out", "statistics.txt"), single.Report)
	assert.Empty(t, single.HTML)

	multi := ArtifactPaths("out", "output.csv", "statistics.txt", true, 2, 3)
	assert.Equal(t, filepath.Join("out", "output_run2.csv"), multi.Data)
	assert.Equal(t, filepath.Join("out", "statistics_run2.txt"), multi.Report)
	assert.Equal(t, filepath.Join("out", "statistics_run2.html"), multi.HTML)
}

func TestToHTML(t *testing.T) {
	page := string(ToHTML("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n", "Report"))
	assert.Contains(t, page, "<title>Report</title>")
	assert.Contains(t, page, "<table>")
}

func TestWriter_WritesArtifacts(t *testing.T) {
	o, d := outcome(t, partition.StateAccepted)
	text, err := Render(o, d)
	require.NoError(t, err)

	dir := t.TempDir()
	paths := ArtifactPaths(dir, "output.csv", "statistics.txt", true, 1, 1)
	writer := NewWriter(excel.NewDataWriter(nil), nil)
	require.NoError(t, writer.WriteAll(context.Background(), []Artifact{{Outcome: o, Report: text, Paths: paths}}))

	back, err := excel.NewDataReader(nil).ReadDataset(context.Background(), paths.Data)
	require.NoError(t, err)
	sets, err := back.Column(partition.SetColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "1", "2"}, sets)

	written, err := os.ReadFile(paths.Report)
	require.NoError(t, err)
	assert.Equal(t, text, string(written))

	_, err = os.Stat(paths.HTML)
	assert.NoError(t, err)
}
