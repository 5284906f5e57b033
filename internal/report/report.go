// Package report renders the statistics report of a partition run and writes
// the run's artifacts.
package report

import (
	"fmt"
	"math"
	"strings"

	"setsplit/app"
	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"

	"github.com/montanaflynn/stats"
)

// Summary describes one continuous attribute within one subset
type Summary struct {
	N      int
	Mean   float64
	SD     float64
	Median float64
}

// Describe summarises the non-missing values. Empty input gives N = 0 and NaN fields.
func Describe(values []float64) Summary {
	var clean stats.Float64Data
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	s := Summary{N: len(clean), Mean: math.NaN(), SD: math.NaN(), Median: math.NaN()}
	if len(clean) == 0 {
		return s
	}
	s.Mean, _ = stats.Mean(clean)
	s.Median, _ = stats.Median(clean)
	if len(clean) > 1 {
		s.SD, _ = stats.StandardDeviationSample(clean)
	}
	return s
}

// Render builds the Markdown report of an outcome. d is the dataset the run
// partitioned; continuous attributes are summarised from its raw values.
func Render(o *app.Outcome, d *dataset.Dataset) (string, error) {
	var b strings.Builder
	sets := len(o.Subsets)

	b.WriteString("# Set partition report\n\n")
	if m := o.Manifest; m != nil {
		fmt.Fprintf(&b, "- Run: %s (run %d)\n", m.RunID, m.RunNumber)
		fmt.Fprintf(&b, "- Source: %s\n", m.Source)
		fmt.Fprintf(&b, "- Seed: %d\n", m.Seed)
		fmt.Fprintf(&b, "- Dataset hash: %s\n", core.Hash(m.DatasetHash).Short())
		fmt.Fprintf(&b, "- Roles hash: %s\n", core.Hash(m.RolesHash).Short())
		fmt.Fprintf(&b, "- Fingerprint: %s\n", m.Fingerprint.Fingerprint.Short())
	}
	fmt.Fprintf(&b, "- Subsets: %d\n", sets)
	fmt.Fprintf(&b, "- Threshold: p >= %.2f on every test\n", o.Threshold)
	fmt.Fprintf(&b, "- Retry cap: %d\n\n", o.MaxRetries)

	fmt.Fprintf(&b, "Number of iterations: %d\n\n", o.Iterations)
	if o.Balanced() {
		fmt.Fprintf(&b, "Status: balanced. Every test reached p >= %.2f.\n\n", o.Threshold)
	} else {
		fmt.Fprintf(&b, "**Note:** the retry cap of %d was reached without every test reaching p >= %.2f. "+
			"The subsets below are the last ones computed and are not statistically balanced.\n\n",
			o.MaxRetries, o.Threshold)
	}

	if len(o.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range o.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Subset sizes\n\n| Set | Items |\n|---|---|\n")
	for i, s := range o.Subsets {
		fmt.Fprintf(&b, "| %d | %d |\n", i+1, len(s))
	}
	b.WriteString("\n")

	writeTests(&b, o)

	if err := writeSummaries(&b, o, d); err != nil {
		return "", err
	}
	writeTables(&b, o)
	writeHistory(&b, o)
	return b.String(), nil
}

func writeTests(b *strings.Builder, o *app.Outcome) {
	b.WriteString("## Equivalence tests\n")
	current := ""
	for i, r := range o.Results {
		if i == 0 || r.Stratum != current {
			current = r.Stratum
			fmt.Fprintf(b, "\n### Stratum: %s\n\n", displayStratum(r.Stratum))
		}
		fmt.Fprintf(b, "- '%s' %s (X2(%d) = %.3f, p = %.3f)", r.Attribute, r.Kind.DisplayName(),
			r.DegreesOfFreedom, r.Statistic, r.PValue)
		var notes []string
		if r.YatesCorrected {
			notes = append(notes, "Yates corrected")
		}
		if r.Missing > 0 {
			notes = append(notes, fmt.Sprintf("%d missing omitted", r.Missing))
		}
		if !r.Passes(o.Threshold) {
			notes = append(notes, "below threshold")
		}
		if len(notes) > 0 {
			fmt.Fprintf(b, " [%s]", strings.Join(notes, ", "))
		}
		b.WriteString(";\n")
	}
	b.WriteString("\n")
}

func writeSummaries(b *strings.Builder, o *app.Outcome, d *dataset.Dataset) error {
	if len(o.Continuous) == 0 {
		return nil
	}
	b.WriteString("## Continuous attributes by subset\n")
	for _, col := range o.Continuous {
		values, err := d.NumericColumn(col)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\n### %s\n\n| Set | n | Mean | SD | Median |\n|---|---|---|---|---|\n", col)
		for i, subset := range o.Subsets {
			group := make([]float64, 0, len(subset))
			for _, id := range subset {
				if pos, ok := d.Position(id); ok {
					group = append(group, values[pos])
				}
			}
			s := Describe(group)
			fmt.Fprintf(b, "| %d | %d | %s | %s | %s |\n", i+1, s.N, num(s.Mean), num(s.SD), num(s.Median))
		}
	}
	b.WriteString("\n")
	return nil
}

func writeTables(b *strings.Builder, o *app.Outcome) {
	var tables []partition.StatResult
	for _, r := range o.Results {
		if r.Table != nil {
			tables = append(tables, r)
		}
	}
	if len(tables) == 0 {
		return
	}
	b.WriteString("## Contingency tables\n")
	for _, r := range tables {
		fmt.Fprintf(b, "\n### %s (%s)\n\n| Category |", r.Attribute, displayStratum(r.Stratum))
		sets := len(o.Subsets)
		for k := 1; k <= sets; k++ {
			fmt.Fprintf(b, " Set %d |", k)
		}
		b.WriteString("\n|---|" + strings.Repeat("---|", sets) + "\n")
		for i, category := range r.Table.Categories {
			fmt.Fprintf(b, "| %s |", category)
			for _, c := range r.Table.Counts[i] {
				fmt.Fprintf(b, " %d |", c)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeHistory(b *strings.Builder, o *app.Outcome) {
	b.WriteString("## Iteration history\n\n| Cycle | Sizes | Largest cluster | Failing tests | State |\n|---|---|---|---|---|\n")
	for _, it := range o.History {
		failing := "none"
		if len(it.Failing) > 0 {
			names := make([]string, len(it.Failing))
			for i, r := range it.Failing {
				names[i] = fmt.Sprintf("%s/%s p=%.3f", displayStratum(r.Stratum), r.Attribute, r.PValue)
			}
			failing = strings.Join(names, "; ")
		}
		fmt.Fprintf(b, "| %d | %v | %d | %s | %s |\n", it.Cycle, it.Sizes, it.LargestCluster, failing, it.State)
	}
}

func displayStratum(label string) string {
	if label == "" {
		return "(empty)"
	}
	return label
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}
