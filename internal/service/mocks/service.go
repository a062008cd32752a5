package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/service"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

func (m *LinkService) Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.CreateLinkResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateLinkResponse), args.Error(1)
}

func (m *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *LinkService) Info(ctx context.Context, code string) (*domain.Link, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *LinkService) Delete(ctx context.Context, code, secret string) error {
	args := m.Called(ctx, code, secret)
	return args.Error(0)
}

func (m *LinkService) List(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *LinkService) StartClickFlush(ctx context.Context, interval time.Duration) error {
	args := m.Called(ctx, interval)
	return args.Error(0)
}

func (m *LinkService) StopClickFlush() error {
	args := m.Called()
	return args.Error(0)
}

func (m *LinkService) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Ensure LinkService implements service.LinkService
var _ service.LinkService = (*LinkService)(nil)
