package app

import (
	"context"
	"fmt"

	"setsplit/domain/partition"
	"setsplit/internal"
	"setsplit/internal/allocate"
	"setsplit/internal/stratify"
	"setsplit/internal/transform"
	"setsplit/ports"

	"golang.org/x/sync/errgroup"
)

// Stage names key the random streams of each cycle
const (
	StageCluster  = "cluster"
	StageAllocate = "allocate"
)

// PreparedStratum is a stratum with its transformed frame. Frames depend only
// on the data, so they are built once per run and reused by every cycle.
type PreparedStratum struct {
	Group stratify.Group
	Frame *transform.Frame
}

// CycleOutput is what one cluster and allocate pass produced
type CycleOutput struct {
	Clusters   [][]partition.Cluster
	PerStratum [][]partition.Subset
	Subsets    []partition.Subset
}

// LargestCluster returns the size of the largest cluster of any stratum
func (o *CycleOutput) LargestCluster() int {
	largest := 0
	for _, clusters := range o.Clusters {
		largest = max(largest, allocate.LargestCluster(clusters))
	}
	return largest
}

// StageRunner executes the clustering and allocation stages of one cycle
type StageRunner struct {
	clusterer ports.Clusterer
	rngPort   ports.RNGPort
	logger    *internal.Logger
}

// NewStageRunner creates a new stage runner
func NewStageRunner(clusterer ports.Clusterer, rngPort ports.RNGPort, logger *internal.Logger) *StageRunner {
	return &StageRunner{
		clusterer: clusterer,
		rngPort:   rngPort,
		logger:    internal.OrDefault(logger).With("StageRunner"),
	}
}

// ClusterStrata clusters every stratum within settings, in parallel up to
// workers at a time (0 means one goroutine per stratum).
func (r *StageRunner) ClusterStrata(ctx context.Context, strata []PreparedStratum, settings partition.ClusterSettings,
	cycle int, seed int64, workers int) ([][]partition.Cluster, error) {
	clusters := make([][]partition.Cluster, len(strata))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range strata {
		g.Go(func() error {
			stream, err := r.rngPort.Stream(gctx, StageCluster, streamKey(cycle, i), seed)
			if err != nil {
				return err
			}
			found, err := r.clusterer.Cluster(gctx, s.Frame, settings, stream)
			if err != nil {
				return err
			}
			r.logger.Trace("cycle %d stratum %q: %d clusters", cycle, s.Group.Stratum.Label, len(found))
			clusters[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clusters, nil
}

// AllocateStrata allocates the clusters of each stratum in stratum order. Every
// stratum keeps its own subsets, but ties are broken against the sizes the
// merged subsets reached so far, so odd-sized strata do not all favour the
// same subsets. The subsets are then merged by index.
func (r *StageRunner) AllocateStrata(ctx context.Context, strata []PreparedStratum, clusters [][]partition.Cluster,
	sets, cycle int, seed int64) (*CycleOutput, error) {
	out := &CycleOutput{
		Clusters:   clusters,
		PerStratum: make([][]partition.Subset, len(strata)),
	}

	merged := make([]int, sets)
	for i, s := range strata {
		stream, err := r.rngPort.Stream(ctx, StageAllocate, streamKey(cycle, i), seed)
		if err != nil {
			return nil, err
		}
		subsets, err := allocate.AllocateOnto(clusters[i], sets, merged, stream)
		if err != nil {
			return nil, err
		}
		for k, subset := range subsets {
			merged[k] += len(subset)
		}
		r.logger.Trace("cycle %d stratum %q: sizes %v", cycle, s.Group.Stratum.Label, partition.Sizes(subsets))
		out.PerStratum[i] = subsets
	}

	subsets, err := partition.Merge(out.PerStratum, sets)
	if err != nil {
		return nil, err
	}
	out.Subsets = subsets
	return out, nil
}

func streamKey(cycle, stratum int) string {
	return fmt.Sprintf("cycle-%d/stratum-%d", cycle, stratum)
}
