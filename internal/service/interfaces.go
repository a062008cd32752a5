package service

import (
	"context"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// LinkService is the produced interface consumed by transport collaborators
type LinkService interface {
	// Create validates the request, generates or claims a code, and durably
	// creates exactly one record. The deletion secret in the response is
	// issued exactly once and never recoverable afterwards.
	Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.CreateLinkResponse, error)

	// Resolve returns the live target for a code, counting the click
	// best-effort off the hot path. Misses are typed: ErrNotFound for
	// unknown codes, ErrExpired for dead ones.
	Resolve(ctx context.Context, code string) (string, error)

	// Info returns the full record for a live code, without the secret hash
	Info(ctx context.Context, code string) (*domain.Link, error)

	// Delete removes a record after verifying the caller's deletion secret
	Delete(ctx context.Context, code, secret string) error

	// List returns all live records, optionally filtered by owner
	List(ctx context.Context, ownerID string) ([]*domain.Link, error)

	// StartClickFlush starts the background click-count flush loop
	StartClickFlush(ctx context.Context, interval time.Duration) error

	// StopClickFlush stops the background flush loop
	StopClickFlush() error

	// Close closes the service and its dependencies
	Close() error
}
