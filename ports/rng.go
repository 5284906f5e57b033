package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one stage of one cycle.
	// The same (stage, key, baseSeed) always yields the same sequence, so a run
	// is reproducible while every retry cycle and every stratum draws its own stream.
	Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error)
}
