package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// InsertIfAbsent durably creates a link record
func (m *LinkRepository) InsertIfAbsent(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// Get retrieves a link by code
func (m *LinkRepository) Get(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// ListLive retrieves all records live at the given instant
func (m *LinkRepository) ListLive(ctx context.Context, now time.Time, ownerID string) ([]*domain.Link, error) {
	args := m.Called(ctx, now, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

// DeleteIfSecretMatches atomically checks the secret hash and deletes
func (m *LinkRepository) DeleteIfSecretMatches(ctx context.Context, code string, matches func(secretHash string) bool) (bool, error) {
	args := m.Called(ctx, code, matches)
	if rf, ok := args.Get(0).(func(func(string) bool) bool); ok {
		return rf(matches), args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

// DeleteExpiredBefore bulk-deletes expired records
func (m *LinkRepository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// IncrementClicksBy adds delta to a record's click count
func (m *LinkRepository) IncrementClicksBy(ctx context.Context, code string, delta int64) error {
	args := m.Called(ctx, code, delta)
	return args.Error(0)
}

// UpdateMetadata persists enriched page metadata
func (m *LinkRepository) UpdateMetadata(ctx context.Context, code string, meta domain.Metadata) error {
	args := m.Called(ctx, code, meta)
	return args.Error(0)
}

// GetCounter returns the stored value for a counter key
func (m *LinkRepository) GetCounter(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// SetCounter durably records a counter value
func (m *LinkRepository) SetCounter(ctx context.Context, key string, value int64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Close closes the repository connection
func (m *LinkRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
