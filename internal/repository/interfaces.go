package repository

import (
	"context"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// CounterStore provides durable named counters for sequence-based code
// generation.
type CounterStore interface {
	// GetCounter returns the stored value for a counter key, 0 if unset
	GetCounter(ctx context.Context, key string) (int64, error)

	// SetCounter durably records a counter value
	SetCounter(ctx context.Context, key string, value int64) error
}

// LinkRepository is the identity store contract. Every mutation is a single
// atomic store call; the insert's uniqueness constraint is the authoritative
// collision gate for code generation.
type LinkRepository interface {
	CounterStore

	// InsertIfAbsent durably creates a link record. Returns
	// domain.ErrConflict when the code is already present.
	InsertIfAbsent(ctx context.Context, link *domain.Link) error

	// Get retrieves a link by code. Returns domain.ErrNotFound when absent.
	// Expiration is not evaluated here; callers apply the liveness rule.
	Get(ctx context.Context, code string) (*domain.Link, error)

	// ListLive retrieves all records live at the given instant, newest
	// first, optionally filtered by owner.
	ListLive(ctx context.Context, now time.Time, ownerID string) ([]*domain.Link, error)

	// DeleteIfSecretMatches atomically reads the stored secret hash, calls
	// matches on it, and deletes the record only when matches returns true.
	// The check and the delete happen in one transaction. Returns
	// domain.ErrNotFound when the code is absent; (false, nil) on mismatch.
	DeleteIfSecretMatches(ctx context.Context, code string, matches func(secretHash string) bool) (bool, error)

	// DeleteExpiredBefore bulk-deletes every record whose expiry is a real
	// timestamp at or before now, returning the number deleted.
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)

	// IncrementClicksBy adds delta to a record's click count. Best-effort;
	// a missing code is not an error.
	IncrementClicksBy(ctx context.Context, code string, delta int64) error

	// UpdateMetadata persists asynchronously enriched page metadata
	UpdateMetadata(ctx context.Context, code string, meta domain.Metadata) error

	// Close closes the repository connection
	Close() error
}
