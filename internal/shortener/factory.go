package shortener

import (
	"fmt"

	"github.com/tripping-alien/shortlink-sub000/internal/repository"
)

// NewGenerator creates a generator for the configured strategy
func NewGenerator(config Config, counters repository.CounterStore) (Generator, error) {
	switch config.Strategy {
	case TypeRandom, "":
		return NewRandomGenerator(config.CodeLength), nil
	case TypeSequence:
		if counters == nil {
			return nil, fmt.Errorf("counter store required for the sequence generator")
		}
		return NewSequenceGenerator(NewCounterCache(counters, config.CounterStep)), nil
	default:
		return nil, fmt.Errorf("unknown generator strategy: %s", config.Strategy)
	}
}
