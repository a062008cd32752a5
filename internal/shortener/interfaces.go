package shortener

import (
	"context"
)

// Generator draws candidate short codes. A candidate carries no uniqueness
// promise; the identity store's insert is the authoritative gate, and the
// service retries on conflict.
type Generator interface {
	// NextCandidate returns the next candidate code
	NextCandidate(ctx context.Context) (string, error)

	// Type returns the type identifier of the generator
	Type() string

	// Close performs cleanup when the generator is no longer needed
	Close() error
}

// CounterProvider manages the monotonic counters used by the sequence
// generator.
type CounterProvider interface {
	// GetNextCounter returns the next counter value for a given key
	GetNextCounter(ctx context.Context, key string) (int64, error)

	// SetCounter sets the counter value for a given key
	SetCounter(ctx context.Context, key string, value int64) error

	// Close performs cleanup when the provider is no longer needed
	Close() error
}

// Generator type identifiers
const (
	TypeRandom   = "random"
	TypeSequence = "sequence"
)

// Config holds configuration for code generators
type Config struct {
	// Strategy selects the generator: random or sequence
	Strategy string `json:"strategy"`

	// CodeLength is the length of randomly drawn codes
	CodeLength int `json:"code_length"`

	// CounterStep is the jump-ahead allocation size for the sequence counter
	CounterStep int64 `json:"counter_step"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Strategy:    TypeRandom,
		CodeLength:  0, // falls back to the code space default
		CounterStep: 100,
	}
}
