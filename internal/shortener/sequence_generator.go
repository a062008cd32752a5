package shortener

import (
	"context"
	"fmt"

	"github.com/tripping-alien/shortlink-sub000/internal/codespace"
)

// SequenceGenerator produces codes from a monotonic counter pushed through
// the reversible sequence codec, so consecutive ids yield unrelated-looking
// codes. Counter allocation is delegated to a CounterProvider.
type SequenceGenerator struct {
	counters   CounterProvider
	counterKey string
	codec      *codespace.SequenceCodec
}

// NewSequenceGenerator creates a new sequence-based generator
func NewSequenceGenerator(counters CounterProvider) *SequenceGenerator {
	return &SequenceGenerator{
		counters:   counters,
		counterKey: "link_seq",
		codec:      codespace.NewSequenceCodec(),
	}
}

// NextCandidate allocates the next counter value and encodes it
func (g *SequenceGenerator) NextCandidate(ctx context.Context) (string, error) {
	id, err := g.counters.GetNextCounter(ctx, g.counterKey)
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence id: %w", err)
	}
	if id <= 0 {
		return "", fmt.Errorf("counter produced non-positive sequence id %d", id)
	}

	return g.codec.Encode(uint64(id))
}

// Type returns the generator type
func (g *SequenceGenerator) Type() string {
	return TypeSequence
}

// Close performs cleanup
func (g *SequenceGenerator) Close() error {
	if g.counters != nil {
		return g.counters.Close()
	}
	return nil
}

// Ensure SequenceGenerator implements Generator
var _ Generator = (*SequenceGenerator)(nil)
