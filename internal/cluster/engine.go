package cluster

import (
	"context"
	"math/rand"

	"setsplit/domain/partition"
	"setsplit/internal"
	"setsplit/internal/transform"
)

// Engine chooses the cluster count by silhouette and returns the clusters of one stratum
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates an engine
func NewEngine(logger *internal.Logger) *Engine {
	return &Engine{logger: internal.OrDefault(logger).With("Cluster")}
}

// withDefaults fills non-positive settings with 10 clusters, a 1000 item
// silhouette sample and 100 iterations
func withDefaults(s partition.ClusterSettings) partition.ClusterSettings {
	if s.MaxClusters <= 0 {
		s.MaxClusters = 10
	}
	if s.SilhouetteSample <= 0 {
		s.SilhouetteSample = 1000
	}
	if s.MaxIter <= 0 {
		s.MaxIter = 100
	}
	return s
}

// Cluster partitions the frame's items. It scans k in [2, min(MaxClusters, n/2)],
// keeps the k with the best silhouette, then fits again at that k. An empty range
// or a failed fit collapses to one cluster holding every item. Only context
// cancellation is returned as an error.
func (e *Engine) Cluster(ctx context.Context, frame *transform.Frame, settings partition.ClusterSettings, rng *rand.Rand) ([]partition.Cluster, error) {
	settings = withDefaults(settings)
	n := frame.Len()
	upper := min(settings.MaxClusters, n/2)
	if upper < 2 {
		e.logger.Warn("%d items cannot form 2 clusters, using a single cluster", n)
		return single(frame), nil
	}

	strategy := SelectStrategy(frame)
	points := Points(frame)

	bestK, bestScore := 0, 0.0
	for k := 2; k <= upper; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels, err := NewKPrototypes(k, settings.MaxIter, strategy).Fit(points, rng)
		if err != nil {
			e.logger.Warn("%s clustering failed at k=%d: %v; using a single cluster", strategy.Name(), k, err)
			return single(frame), nil
		}
		score, ok := Silhouette(points, labels, strategy, settings.SilhouetteSample, rng)
		if !ok {
			continue
		}
		e.logger.Trace("k=%d silhouette=%.4f", k, score)
		if bestK == 0 || score > bestScore {
			bestK, bestScore = k, score
		}
	}
	if bestK == 0 {
		e.logger.Warn("no cluster count produced a valid silhouette, using a single cluster")
		return single(frame), nil
	}
	e.logger.Debug("%s regime: chose k=%d (silhouette %.4f) for %d items", strategy.Name(), bestK, bestScore, n)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	labels, err := NewKPrototypes(bestK, settings.MaxIter, strategy).Fit(points, rng)
	if err != nil {
		e.logger.Warn("final clustering failed at k=%d: %v; using a single cluster", bestK, err)
		return single(frame), nil
	}
	return group(frame, labels, bestK), nil
}

func single(frame *transform.Frame) []partition.Cluster {
	return []partition.Cluster{append(partition.Cluster{}, frame.Items...)}
}

// group turns labels into clusters of item ids, dropping empty ones
func group(frame *transform.Frame, labels []int, k int) []partition.Cluster {
	clusters := make([]partition.Cluster, k)
	for i, label := range labels {
		clusters[label] = append(clusters[label], frame.Items[i])
	}
	out := clusters[:0]
	for _, c := range clusters {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}
