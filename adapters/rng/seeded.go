// Package rng provides the seeded random streams used by clustering and allocation.
package rng

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// SeededAdapter implements ports.RNGPort with math/rand sources
type SeededAdapter struct{}

// NewSeededAdapter creates a seeded RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// Stream creates a deterministic RNG stream for a specific stage and key
func (r *SeededAdapter) Stream(ctx context.Context, stageName, key string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := mix(baseSeed, stageName)
	seed = mix(seed, key)
	return rand.New(rand.NewSource(seed)), nil
}

// mix folds a label into a seed with FNV-1a so nearby labels give unrelated streams
func mix(seed int64, label string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(label))
	return int64(h.Sum64())
}
