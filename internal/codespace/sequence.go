package codespace

import (
	"fmt"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// Invertible 31-bit permutation parameters. The multiplier is odd, so it has
// a multiplicative inverse modulo 2^31 and the mapping is a bijection on
// [0, 2^31). Changing any of these invalidates all previously issued
// sequence codes.
const (
	permutePrime        uint64 = 1580030173
	permutePrimeInverse uint64 = 59260789 // permutePrime^-1 mod 2^31
	permuteXOR          uint64 = 1234567890

	permuteMask uint64 = 1<<31 - 1

	// MaxSequenceID bounds the sequence codec's domain
	MaxSequenceID uint64 = 1<<31 - 1
)

// permute scrambles a value within the 31-bit space so sequential inputs
// produce unrelated outputs.
func permute(n uint64) uint64 {
	return ((n * permutePrime) & permuteMask) ^ permuteXOR
}

// unpermute inverts permute.
func unpermute(n uint64) uint64 {
	return ((n ^ permuteXOR) * permutePrimeInverse) & permuteMask
}

// SequenceCodec maps monotonically assigned integer ids to short
// non-sequential strings and back. It composes the 31-bit permutation with a
// bijective numeral encoding; decode(encode(n)) == n for all n in
// [1, MaxSequenceID]. It is not cryptographically secure; the contract is
// hard to guess next/previous, not hard to invert by force.
type SequenceCodec struct {
	numerals *Bijective
}

// NewSequenceCodec creates a codec over the code space alphabet.
func NewSequenceCodec() *SequenceCodec {
	return &SequenceCodec{numerals: NewBijective(Alphabet)}
}

// Encode turns a positive sequence id into a short code.
func (c *SequenceCodec) Encode(id uint64) (string, error) {
	if id == 0 || id > MaxSequenceID {
		return "", fmt.Errorf("%w: sequence id %d is outside [1, %d]", domain.ErrInvalidInput, id, MaxSequenceID)
	}
	// permute yields values in [0, 2^31); shift into the bijective domain
	return c.numerals.Encode(permute(id) + 1)
}

// Decode recovers the sequence id from a short code.
func (c *SequenceCodec) Decode(code string) (uint64, error) {
	v, err := c.numerals.Decode(code)
	if err != nil {
		return 0, err
	}
	if v == 0 || v > permuteMask+1 {
		return 0, fmt.Errorf("%w: code decodes outside the sequence domain", domain.ErrInvalidInput)
	}

	id := unpermute(v - 1)
	if id == 0 || id > MaxSequenceID {
		return 0, fmt.Errorf("%w: code does not map to a valid sequence id", domain.ErrInvalidInput)
	}
	return id, nil
}
