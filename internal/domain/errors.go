package domain

import (
	"errors"
)

// Error taxonomy for the identity subsystem. Handlers map these to HTTP
// status classes; everything else propagates as an internal fault.
var (
	// ErrInvalidInput indicates a malformed code, URL, or TTL (client fault)
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a custom code that is already taken (client fault)
	ErrConflict = errors.New("code already in use")

	// ErrExhausted indicates the generator retry budget was exceeded (server fault)
	ErrExhausted = errors.New("code generation retries exhausted")

	// ErrNotFound indicates no record exists for the code
	ErrNotFound = errors.New("link not found")

	// ErrExpired indicates the record exists but is past its liveness window
	ErrExpired = errors.New("link expired")

	// ErrUnauthorized indicates a deletion secret mismatch
	ErrUnauthorized = errors.New("deletion secret mismatch")

	// ErrStoreUnavailable indicates a transient store I/O fault
	ErrStoreUnavailable = errors.New("store unavailable")
)
