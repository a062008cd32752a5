package codespace

import (
	"fmt"
	"math"
	"strings"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// Bijective is a bijective base-N numeral system over a fixed alphabet.
// Unlike positional base-N it has no zero digit, so every positive integer
// has exactly one representation and every string decodes to exactly one
// positive integer. Zero and negatives have no representation.
type Bijective struct {
	alphabet string
	base     uint64
}

// NewBijective creates a bijective numeral system over the given alphabet.
// An empty alphabet defaults to the code space alphabet.
func NewBijective(alphabet string) *Bijective {
	if alphabet == "" {
		alphabet = Alphabet
	}
	return &Bijective{
		alphabet: alphabet,
		base:     uint64(len(alphabet)),
	}
}

// Encode converts a positive integer to its bijective representation.
func (b *Bijective) Encode(n uint64) (string, error) {
	if n == 0 {
		return "", fmt.Errorf("%w: bijective encoding is defined for positive integers only", domain.ErrInvalidInput)
	}

	var sb strings.Builder
	for n > 0 {
		n--
		sb.WriteByte(b.alphabet[n%b.base])
		n /= b.base
	}

	// Digits were emitted least significant first
	encoded := []byte(sb.String())
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}

	return string(encoded), nil
}

// Decode converts a bijective string back to its positive integer.
func (b *Bijective) Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty code", domain.ErrInvalidInput)
	}

	var n uint64
	for _, c := range s {
		idx := strings.IndexRune(b.alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("%w: character %q is outside the code alphabet", domain.ErrInvalidInput, c)
		}
		digit := uint64(idx) + 1
		if n > (math.MaxUint64-digit)/b.base {
			return 0, fmt.Errorf("%w: code is too long to decode", domain.ErrInvalidInput)
		}
		n = n*b.base + digit
	}

	return n, nil
}
