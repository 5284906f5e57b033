// Package testkit builds synthetic stimulus datasets and run plans for tests.
package testkit

import (
	"fmt"
	"math/rand"

	"setsplit/adapters/rng"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"
	"setsplit/internal/config"
	"setsplit/ports"
)

// StimulusConfig describes a synthetic stimulus list
type StimulusConfig struct {
	Items int
	// Continuous columns are drawn uniformly from [0, 100)
	Continuous int
	// Categorical holds the number of levels of each categorical column
	Categorical []int
	// Strata gives the size of each absolute group; empty means no absolute column
	Strata []int
	// Missing blanks every n-th cell of the first continuous column when > 0
	Missing int
	Seed    int64
}

// TestKit provides testing utilities and fixtures
type TestKit struct {
	rng *rand.Rand
}

// NewTestKit creates a test kit whose generators draw from seed
func NewTestKit(seed int64) *TestKit {
	return &TestKit{rng: rand.New(rand.NewSource(seed))}
}

// RNGAdapter returns the seeded RNG adapter used in production
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeededAdapter()
}

// Stimuli generates a dataset of words with the configured columns and the
// roles that describe it. Columns are word, cont_1.., cat_1.., then group.
func (t *TestKit) Stimuli(cfg StimulusConfig) (*dataset.Dataset, dataset.Roles, error) {
	r := t.rng
	if cfg.Seed != 0 {
		r = rand.New(rand.NewSource(cfg.Seed))
	}
	items := cfg.Items
	if len(cfg.Strata) > 0 {
		items = 0
		for _, size := range cfg.Strata {
			items += size
		}
	}

	headers := []string{"word"}
	codes := []string{"l"}
	for j := 0; j < cfg.Continuous; j++ {
		headers = append(headers, fmt.Sprintf("cont_%d", j+1))
		codes = append(codes, "n")
	}
	for j := range cfg.Categorical {
		headers = append(headers, fmt.Sprintf("cat_%d", j+1))
		codes = append(codes, "c")
	}
	if len(cfg.Strata) > 0 {
		headers = append(headers, "group")
		codes = append(codes, "a")
	}

	rows := make([][]string, items)
	stratum, left := 0, 0
	if len(cfg.Strata) > 0 {
		left = cfg.Strata[0]
	}
	for i := range rows {
		row := []string{fmt.Sprintf("item%03d", i+1)}
		for j := 0; j < cfg.Continuous; j++ {
			cell := fmt.Sprintf("%.3f", r.Float64()*100)
			if j == 0 && cfg.Missing > 0 && (i+1)%cfg.Missing == 0 {
				cell = ""
			}
			row = append(row, cell)
		}
		for _, levels := range cfg.Categorical {
			row = append(row, string(rune('A'+r.Intn(levels))))
		}
		if len(cfg.Strata) > 0 {
			for left == 0 {
				stratum++
				left = cfg.Strata[stratum]
			}
			row = append(row, fmt.Sprintf("G%d", stratum+1))
			left--
		}
		rows[i] = row
	}

	d, err := dataset.New("stimuli.csv", headers, rows)
	if err != nil {
		return nil, dataset.Roles{}, err
	}
	roles, err := dataset.RolesFromCodes(d.Headers, codes)
	if err != nil {
		return nil, dataset.Roles{}, err
	}
	return d, roles, nil
}

// Plan builds a run plan with the default partition settings
func (t *TestKit) Plan(d *dataset.Dataset, roles dataset.Roles, sets int, seed int64) partition.Plan {
	cfg := config.Default().Partition
	return partition.Plan{
		Dataset:          d,
		Roles:            roles,
		Sets:             sets,
		Threshold:        cfg.PThreshold,
		MaxRetries:       cfg.MaxRetries,
		MaxClusters:      cfg.MaxClusters,
		SilhouetteSample: cfg.SilhouetteSample,
		ClusterMaxIter:   cfg.ClusterMaxIter,
		Seed:             seed,
		Workers:          cfg.Workers,
	}
}
