package ports

import (
	"context"
	"math/rand"

	"setsplit/domain/partition"
	"setsplit/internal/transform"
)

// Clusterer groups the items of one transformed stratum within the bounds of
// settings. Implementations draw all randomness from rng so a seeded stream
// reproduces the same clusters.
type Clusterer interface {
	Cluster(ctx context.Context, frame *transform.Frame, settings partition.ClusterSettings, rng *rand.Rand) ([]partition.Cluster, error)
}
