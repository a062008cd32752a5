// Package codespace defines the public code alphabet and the transforms that
// turn record identities into short, non-sequential strings.
package codespace

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

const (
	// Alphabet is the full code space: lowercase letters and digits
	Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultCodeLength is the length of randomly drawn codes
	DefaultCodeLength = 7

	// Custom code length bounds
	MinCustomCodeLength = 4
	MaxCustomCodeLength = 32
)

// RandomCode draws a fixed-length code uniformly from the alphabet. The
// caller relies on the identity store's uniqueness constraint; this function
// makes no uniqueness promise of its own.
func RandomCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random code character: %w", err)
		}
		result[i] = Alphabet[n.Int64()]
	}

	return string(result), nil
}

// NormalizeCustomCode lowercases and validates a caller-supplied custom code
// against the code space alphabet and length bounds.
func NormalizeCustomCode(code string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))

	if len(normalized) < MinCustomCodeLength || len(normalized) > MaxCustomCodeLength {
		return "", fmt.Errorf("%w: custom code must be %d-%d characters",
			domain.ErrInvalidInput, MinCustomCodeLength, MaxCustomCodeLength)
	}

	for _, c := range normalized {
		if !strings.ContainsRune(Alphabet, c) {
			return "", fmt.Errorf("%w: custom code may only contain lowercase letters and digits", domain.ErrInvalidInput)
		}
	}

	return normalized, nil
}

// ValidCode reports whether a string could be a code in this space at all.
// Used by handlers to short-circuit obvious junk before hitting the store.
func ValidCode(code string) bool {
	if len(code) == 0 || len(code) > MaxCustomCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}
