package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"setsplit/adapters/excel"
	"setsplit/domain/partition"
	"setsplit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stimuliFile(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("word,freq,length,class,correct\n")
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "w%02d,%d,%d,%s,%s\n", i, (i*37)%50, 3+i%5, []string{"noun", "verb"}[i%2], []string{"yes", "no"}[i/12])
	}
	path := filepath.Join(t.TempDir(), "stimuli.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func baseOptions(t *testing.T, data string) options {
	notTTY := false
	return options{
		dataPath:    data,
		setsArg:     "2",
		runs:        1,
		roles:       "l,n,n,c,a",
		seed:        42,
		seedSet:     true,
		outDir:      t.TempDir(),
		workers:     -1,
		interactive: &notTTY,
	}
}

func TestExecute_WritesArtifacts(t *testing.T) {
	opts := baseOptions(t, stimuliFile(t))
	opts.html = true
	var stdout bytes.Buffer

	require.NoError(t, execute(context.Background(), opts, &stdout))

	out, err := excel.NewDataReader(nil).ReadDataset(context.Background(), filepath.Join(opts.outDir, "output.csv"))
	require.NoError(t, err)
	sets, err := out.Column(partition.SetColumn)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, s := range sets {
		counts[s]++
	}
	assert.Equal(t, map[string]int{"1": 12, "2": 12}, counts)

	text, err := os.ReadFile(filepath.Join(opts.outDir, "statistics.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Number of iterations:")
	assert.Contains(t, string(text), "### Stratum: yes")
	_, err = os.Stat(filepath.Join(opts.outDir, "statistics.html"))
	assert.NoError(t, err)
	assert.Contains(t, stdout.String(), "Run 1:")
}

func TestExecute_RepeatedRuns(t *testing.T) {
	opts := baseOptions(t, stimuliFile(t))
	opts.runs = 2

	require.NoError(t, execute(context.Background(), opts, &bytes.Buffer{}))
	for _, name := range []string{"output_run1.csv", "output_run2.csv", "statistics_run1.txt", "statistics_run2.txt"} {
		_, err := os.Stat(filepath.Join(opts.outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestExecute_FatalErrorsWriteNothing(t *testing.T) {
	data := stimuliFile(t)
	cases := map[string]struct {
		mutate func(*options)
		code   string
	}{
		"missing file":  {func(o *options) { o.dataPath = filepath.Join(t.TempDir(), "none.csv") }, errors.CodeInputError},
		"one set":       {func(o *options) { o.setsArg = "1" }, errors.CodeConfigInvalid},
		"not a number":  {func(o *options) { o.setsArg = "two" }, errors.CodeConfigInvalid},
		"role mismatch": {func(o *options) { o.roles = "l,n" }, errors.CodeConfigInvalid},
		"two labels":    {func(o *options) { o.roles = "l,l,n,c,a" }, errors.CodeConfigInvalid},
		"bad delimiter": {func(o *options) { o.delimiter = "::" }, errors.CodeConfigInvalid},
		"zero runs":     {func(o *options) { o.runs = 0 }, errors.CodeConfigInvalid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			opts := baseOptions(t, data)
			tc.mutate(&opts)

			err := execute(context.Background(), opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
			assert.Equal(t, 1, errors.ExitCode(err))

			entries, err := os.ReadDir(opts.outDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExecute_PromptsWhenRoleListMismatches(t *testing.T) {
	opts := baseOptions(t, stimuliFile(t))
	tty := true
	opts.interactive = &tty
	opts.roles = "l,n"
	opts.stdin = strings.NewReader("l\nn\nd\nc\nd\n")

	require.NoError(t, execute(context.Background(), opts, &bytes.Buffer{}))
	_, err := os.Stat(filepath.Join(opts.outDir, "output.csv"))
	assert.NoError(t, err)
}

func TestExecute_Cancelled(t *testing.T) {
	opts := baseOptions(t, stimuliFile(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, execute(ctx, opts, &bytes.Buffer{}))
	entries, err := os.ReadDir(opts.outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"tab": '\t', ";": ';', "comma": ',', "|": '|'} {
		got, err := parseDelimiter(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestNewReader(t *testing.T) {
	reader, err := newReader(options{delimiter: "semicolon", sheet: "Stimuli"}, nil)
	require.NoError(t, err)
	dr, ok := reader.(*excel.DataReader)
	require.True(t, ok)
	assert.Equal(t, ';', dr.Delimiter)
	assert.Equal(t, "Stimuli", dr.Sheet)

	_, err = newReader(options{delimiter: "::"}, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestRootCmd_RequiresTwoArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"only-one"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
