package shortener

import (
	"context"

	"github.com/tripping-alien/shortlink-sub000/internal/codespace"
)

// RandomGenerator draws fixed-length codes uniformly from the code space
// alphabet. This is the system-of-record strategy: candidates are
// independent draws and collisions surface as insert conflicts.
type RandomGenerator struct {
	length int
}

// NewRandomGenerator creates a random generator with the given code length
// (0 selects the code space default).
func NewRandomGenerator(length int) *RandomGenerator {
	return &RandomGenerator{length: length}
}

// NextCandidate draws a new random code
func (g *RandomGenerator) NextCandidate(ctx context.Context) (string, error) {
	return codespace.RandomCode(g.length)
}

// Type returns the generator type
func (g *RandomGenerator) Type() string {
	return TypeRandom
}

// Close performs cleanup
func (g *RandomGenerator) Close() error {
	return nil
}

// Ensure RandomGenerator implements Generator
var _ Generator = (*RandomGenerator)(nil)
