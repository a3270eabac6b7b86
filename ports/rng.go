package ports

import (
	"context"
	"math/rand"

	apperrors "schedrisk/internal/errors"
)

// RNGPort provides seeded random number generation for deterministic
// operations. Every stochastic draw in a run flows from a stream created
// here; streams are never shared implicitly across calls.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation. The same (name, seed) pair always yields an
	// identical stream.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}

// SeededRNG is the default RNGPort: a plain math/rand stream per request,
// with the operation name folded into the seed so distinct operations on
// the same base seed do not share draws.
type SeededRNG struct{}

// NewSeededRNG creates the default RNG adapter.
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

// SeededStream implements RNGPort.
func (r *SeededRNG) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("rng stream name cannot be empty")
	}
	return rand.New(rand.NewSource(seed ^ hashName(name))), nil
}

// hashName folds an operation name into 64 bits (FNV-1a).
func hashName(name string) int64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= prime
	}
	return int64(h)
}
