package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripping-alien/shortlink-sub000/internal/cache"
	"github.com/tripping-alien/shortlink-sub000/internal/codespace"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/metrics"
	"github.com/tripping-alien/shortlink-sub000/internal/repository"
	"github.com/tripping-alien/shortlink-sub000/internal/shortener"
)

const (
	// MaxURLLength bounds accepted target URLs
	MaxURLLength = 2048

	// DefaultMaxRetries is the generation retry budget for random codes
	DefaultMaxRetries = 5

	// DefaultEnrichTimeout bounds the metadata fetch for a new link
	DefaultEnrichTimeout = 10 * time.Second
)

// MetadataFetcher fetches page metadata for a target URL. Implementations
// must honor the context deadline; enrichment never blocks the create path.
type MetadataFetcher interface {
	Fetch(ctx context.Context, targetURL string) (domain.Metadata, error)
}

// Options tunes a LinkService
type Options struct {
	// ServerURL is the public base used to build short URLs
	ServerURL string

	// MaxRetries bounds generation attempts for random codes
	MaxRetries int

	// EnrichTimeout bounds the asynchronous metadata fetch
	EnrichTimeout time.Duration
}

// linkService implements LinkService
type linkService struct {
	repo      repository.LinkRepository
	cache     cache.SyncableCache
	generator shortener.Generator
	fetcher   MetadataFetcher
	opts      Options
}

// NewLinkService creates the link service. fetcher may be nil to disable
// metadata enrichment.
func NewLinkService(repo repository.LinkRepository, c cache.SyncableCache, generator shortener.Generator, fetcher MetadataFetcher, opts Options) LinkService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.EnrichTimeout <= 0 {
		opts.EnrichTimeout = DefaultEnrichTimeout
	}

	return &linkService{
		repo:      repo,
		cache:     c,
		generator: generator,
		fetcher:   fetcher,
		opts:      opts,
	}
}

// normalizeTargetURL validates the destination, prepending https:// when the
// caller omitted a scheme.
func normalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: URL cannot be empty", domain.ErrInvalidInput)
	}
	if len(raw) > MaxURLLength {
		return "", fmt.Errorf("%w: URL exceeds maximum length of %d", domain.ErrInvalidInput, MaxURLLength)
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		if !strings.Contains(raw, ".") {
			return "", fmt.Errorf("%w: URL must contain a domain name", domain.ErrInvalidInput)
		}
		raw = "https://" + raw
	}

	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: only HTTP and HTTPS URLs are supported", domain.ErrInvalidInput)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: URL must contain a host", domain.ErrInvalidInput)
	}

	return raw, nil
}

// Create validates the request and durably creates exactly one record
func (s *linkService) Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.CreateLinkResponse, error) {
	targetURL, err := normalizeTargetURL(req.URL)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	ttl := domain.ParseTTL(req.TTL)
	expiresAt := ttl.ExpiryFrom(createdAt)

	// The deletion secret is issued exactly once; only its bcrypt hash is
	// ever stored.
	secret := uuid.NewString()
	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash deletion secret: %w", err)
	}

	link := &domain.Link{
		TargetURL:     targetURL,
		SecretHash:    string(secretHash),
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
		OwnerID:       req.OwnerID,
		SummaryStatus: domain.SummaryPending,
	}

	if req.CustomCode != "" {
		link.Code, err = s.claimCustomCode(ctx, link, req.CustomCode)
	} else {
		link.Code, err = s.claimGeneratedCode(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	metrics.LinksCreated.WithLabelValues(s.generator.Type()).Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, link.Code, &domain.CacheEntry{
			TargetURL:    targetURL,
			ExpiresAt:    expiresAt,
			LastAccessAt: createdAt,
		}); err != nil {
			logrus.WithError(err).WithField("code", link.Code).Warn("failed to cache new link")
		}
	}

	if s.fetcher != nil {
		go s.enrich(link.Code, targetURL)
	}

	return &domain.CreateLinkResponse{
		Code:           link.Code,
		ShortURL:       s.opts.ServerURL + "/" + link.Code,
		TargetURL:      targetURL,
		ExpiresAt:      expiresAt,
		DeletionSecret: secret,
		CreatedAt:      createdAt,
	}, nil
}

// claimCustomCode validates a caller-supplied code and attempts exactly one
// insert; a taken code is a Conflict, never retried.
func (s *linkService) claimCustomCode(ctx context.Context, link *domain.Link, customCode string) (string, error) {
	code, err := codespace.NormalizeCustomCode(customCode)
	if err != nil {
		return "", err
	}

	link.Code = code
	if err := s.repo.InsertIfAbsent(ctx, link); err != nil {
		return "", err
	}

	return code, nil
}

// claimGeneratedCode draws candidates until one wins the insert race. The
// insert is the authoritative uniqueness gate; conflicts are retried up to
// the budget and then surfaced as a server fault.
func (s *linkService) claimGeneratedCode(ctx context.Context, link *domain.Link) (string, error) {
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		candidate, err := s.generator.NextCandidate(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to generate candidate code: %w", err)
		}

		link.Code = candidate
		err = s.repo.InsertIfAbsent(ctx, link)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			metrics.GenerationConflicts.Inc()
			logrus.WithFields(logrus.Fields{
				"code":    candidate,
				"attempt": attempt,
			}).Debug("candidate code collision, retrying")
			continue
		}
		return "", err
	}

	return "", fmt.Errorf("%w after %d attempts", domain.ErrExhausted, s.opts.MaxRetries)
}

// enrich fetches page metadata for a freshly created link. Runs off the
// request path with its own bounded context; failures are logged only.
func (s *linkService) enrich(code, targetURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.EnrichTimeout)
	defer cancel()

	meta, err := s.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		logrus.WithError(err).WithField("code", code).Debug("metadata enrichment failed")
		return
	}
	if meta.SummaryStatus == "" {
		meta.SummaryStatus = domain.SummarySkipped
	}

	if err := s.repo.UpdateMetadata(ctx, code, meta); err != nil {
		logrus.WithError(err).WithField("code", code).Warn("failed to persist link metadata")
	}
}

// Resolve returns the live target for a code
func (s *linkService) Resolve(ctx context.Context, code string) (string, error) {
	now := time.Now().UTC()

	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, code); ok {
			if entry.ExpiresAt != nil && !entry.ExpiresAt.After(now) {
				// Drop the dead entry; the sweeper owns the store record
				if err := s.cache.Delete(ctx, code); err != nil {
					logrus.WithError(err).WithField("code", code).Warn("failed to evict expired cache entry")
				}
				return "", fmt.Errorf("%w: %s", domain.ErrExpired, code)
			}

			if err := s.cache.IncrementClicks(ctx, code); err != nil {
				logrus.WithError(err).WithField("code", code).Warn("failed to count click in cache")
			}
			return entry.TargetURL, nil
		}
	}

	link, err := s.repo.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if !link.LiveAt(now) {
		return "", fmt.Errorf("%w: %s", domain.ErrExpired, code)
	}

	if s.cache != nil {
		// Seed the cache with the click already buffered
		if err := s.cache.Set(ctx, code, &domain.CacheEntry{
			TargetURL:     link.TargetURL,
			ExpiresAt:     link.ExpiresAt,
			PendingClicks: 1,
			LastAccessAt:  now,
			Dirty:         true,
		}); err != nil {
			logrus.WithError(err).WithField("code", code).Warn("failed to cache resolved link")
		}
	} else {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.repo.IncrementClicksBy(ctx, code, 1); err != nil {
				logrus.WithError(err).WithField("code", code).Warn("failed to count click")
			}
		}()
	}

	return link.TargetURL, nil
}

// Info returns the full record for a live code
func (s *linkService) Info(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !link.LiveAt(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrExpired, code)
	}

	// Fold in clicks not yet flushed from the cache
	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, code); ok {
			link.ClickCount += entry.PendingClicks
		}
	}

	link.SecretHash = ""
	return link, nil
}

// Delete removes a record after verifying the caller's secret. The check and
// the delete are one store transaction; bcrypt comparison is constant-time
// over the hash.
func (s *linkService) Delete(ctx context.Context, code, secret string) error {
	deleted, err := s.repo.DeleteIfSecretMatches(ctx, code, func(secretHash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(secret)) == nil
	})
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, code)
	}

	metrics.LinksDeleted.Inc()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, code); err != nil {
			logrus.WithError(err).WithField("code", code).Warn("failed to evict deleted link from cache")
		}
	}

	logrus.WithField("code", code).Info("link deleted")
	return nil
}

// List returns all live records, optionally filtered by owner
func (s *linkService) List(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	links, err := s.repo.ListLive(ctx, time.Now().UTC(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// StartClickFlush starts the background click-count flush loop
func (s *linkService) StartClickFlush(ctx context.Context, interval time.Duration) error {
	if s.cache == nil {
		return nil
	}

	flush := func(pending map[string]int64) error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for code, delta := range pending {
			if err := s.repo.IncrementClicksBy(flushCtx, code, delta); err != nil {
				return fmt.Errorf("failed to flush clicks for %s: %w", code, err)
			}
		}
		return nil
	}

	return s.cache.StartBackgroundFlush(ctx, interval, flush)
}

// StopClickFlush stops the background flush loop
func (s *linkService) StopClickFlush() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.StopBackgroundFlush()
}

// Close closes the service and its dependencies
func (s *linkService) Close() error {
	if err := s.generator.Close(); err != nil {
		return fmt.Errorf("failed to close generator: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}
	return nil
}

// Ensure linkService implements LinkService
var _ LinkService = (*linkService)(nil)
