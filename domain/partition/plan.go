package partition

import (
	"fmt"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
)

// Plan is the immutable configuration of one balancing run. It is threaded
// through every component instead of package-level state.
type Plan struct {
	Dataset *dataset.Dataset
	Roles   dataset.Roles
	Sets    int

	Threshold        float64
	MaxRetries       int
	MaxClusters      int
	SilhouetteSample int
	ClusterMaxIter   int
	Seed             int64
	Workers          int
}

// Validate checks that the plan can be executed
func (p Plan) Validate() error {
	if p.Dataset == nil || p.Dataset.Len() == 0 {
		return core.ErrEmptyDataset
	}
	if p.Sets < 2 {
		return fmt.Errorf("%w: got %d", core.ErrTooFewSets, p.Sets)
	}
	if err := p.Roles.Validate(p.Dataset); err != nil {
		return err
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		return fmt.Errorf("p-value threshold must be in (0,1), got %g", p.Threshold)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", p.MaxRetries)
	}
	return nil
}

// ClusterSettings bounds the search of one clustering pass
type ClusterSettings struct {
	MaxClusters      int
	SilhouetteSample int
	MaxIter          int
}

// ClusterSettings returns the clustering bounds carried by the plan
func (p Plan) ClusterSettings() ClusterSettings {
	return ClusterSettings{
		MaxClusters:      p.MaxClusters,
		SilhouetteSample: p.SilhouetteSample,
		MaxIter:          p.ClusterMaxIter,
	}
}

// MaxCycles is the largest number of cluster/allocate/verify cycles a run executes
func (p Plan) MaxCycles() int {
	return p.MaxRetries + 1
}
