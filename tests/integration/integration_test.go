package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripping-alien/shortlink-sub000/internal/cache/memory"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/repository/sqlite"
	"github.com/tripping-alien/shortlink-sub000/internal/service"
	"github.com/tripping-alien/shortlink-sub000/internal/shortener"
	"github.com/tripping-alien/shortlink-sub000/internal/sweeper"
)

type testStack struct {
	repo  *sqlite.Repository
	cache *memory.Cache
	links service.LinkService
}

func newStack(t *testing.T, strategy string) *testStack {
	t.Helper()

	repo, err := sqlite.New(filepath.Join(t.TempDir(), "links.db"))
	require.NoError(t, err)

	cfg := shortener.DefaultConfig()
	cfg.Strategy = strategy
	generator, err := shortener.NewGenerator(cfg, repo)
	require.NoError(t, err)

	c := memory.New()
	links := service.NewLinkService(repo, c, generator, nil, service.Options{
		ServerURL: "http://localhost:8080",
	})
	t.Cleanup(func() { _ = links.Close() })

	return &testStack{repo: repo, cache: c, links: links}
}

func TestFullWorkflow(t *testing.T) {
	stack := newStack(t, shortener.TypeRandom)
	ctx := context.Background()

	require.NoError(t, stack.links.StartClickFlush(ctx, 50*time.Millisecond))
	defer stack.links.StopClickFlush()

	targetURL := "https://example.com/very/long/path/to/resource"

	created, err := stack.links.Create(ctx, domain.CreateLinkRequest{URL: targetURL, OwnerID: "alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Code)
	assert.NotEmpty(t, created.DeletionSecret)
	assert.Equal(t, targetURL, created.TargetURL)
	require.NotNil(t, created.ExpiresAt)

	code := created.Code

	info, err := stack.links.Info(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, targetURL, info.TargetURL)
	assert.Equal(t, int64(0), info.ClickCount)
	assert.Empty(t, info.SecretHash)

	resolved, err := stack.links.Resolve(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, targetURL, resolved)

	// The click lands in the store once the background flush runs
	assert.Eventually(t, func() bool {
		link, err := stack.repo.Get(ctx, code)
		return err == nil && link.ClickCount == 1
	}, 2*time.Second, 25*time.Millisecond)

	// A second link with a custom code
	second, err := stack.links.Create(ctx, domain.CreateLinkRequest{
		URL:        "https://example.org",
		CustomCode: "docs",
		TTL:        "never",
		OwnerID:    "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "docs", second.Code)
	assert.Nil(t, second.ExpiresAt)

	all, err := stack.links.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	alice, err := stack.links.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, code, alice[0].Code)

	// The custom code cannot be claimed twice
	_, err = stack.links.Create(ctx, domain.CreateLinkRequest{URL: "https://example.net", CustomCode: "docs"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// A wrong secret must not delete
	err = stack.links.Delete(ctx, code, "not-the-secret")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = stack.links.Resolve(ctx, code)
	require.NoError(t, err, "link must survive a failed deletion")

	// The issued secret deletes
	require.NoError(t, stack.links.Delete(ctx, code, created.DeletionSecret))

	_, err = stack.links.Resolve(ctx, code)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	remaining, err := stack.links.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "docs", remaining[0].Code)
}

func TestExpirationAndSweep(t *testing.T) {
	stack := newStack(t, shortener.TypeRandom)
	ctx := context.Background()

	created, err := stack.links.Create(ctx, domain.CreateLinkRequest{URL: "https://example.com", TTL: "1s"})
	require.NoError(t, err)

	// Live immediately after creation
	_, err = stack.links.Resolve(ctx, created.Code)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	// Expired links resolve to Gone even while the record still exists
	_, err = stack.links.Resolve(ctx, created.Code)
	assert.ErrorIs(t, err, domain.ErrExpired)

	_, err = stack.links.Info(ctx, created.Code)
	assert.ErrorIs(t, err, domain.ErrExpired)

	list, err := stack.links.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	// The sweeper reclaims the record
	sweep := sweeper.New(stack.repo, 50*time.Millisecond)
	sweep.Start(ctx)
	defer sweep.Stop(time.Second)

	assert.Eventually(t, func() bool {
		_, err := stack.repo.Get(ctx, created.Code)
		return err != nil
	}, 2*time.Second, 25*time.Millisecond, "expired record should be deleted")

	// After the sweep the code reads as absent, not expired
	_, err = stack.links.Info(ctx, created.Code)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSequenceGeneratorWorkflow(t *testing.T) {
	stack := newStack(t, shortener.TypeSequence)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created, err := stack.links.Create(ctx, domain.CreateLinkRequest{URL: "https://example.com"})
		require.NoError(t, err)
		assert.False(t, seen[created.Code], "codes must be unique")
		seen[created.Code] = true

		resolved, err := stack.links.Resolve(ctx, created.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", resolved)
	}
}

func TestConcurrentCreates(t *testing.T) {
	stack := newStack(t, shortener.TypeRandom)
	ctx := context.Background()

	concurrency := 10
	codes := make(chan string, concurrency)
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			created, err := stack.links.Create(ctx, domain.CreateLinkRequest{URL: "https://example.com/concurrent"})
			if err != nil {
				errs <- err
				return
			}
			codes <- created.Code
		}()
	}

	seen := make(map[string]bool)
	for i := 0; i < concurrency; i++ {
		select {
		case err := <-errs:
			t.Fatalf("concurrent create failed: %v", err)
		case code := <-codes:
			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	}

	all, err := stack.links.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, concurrency)
}

func TestConcurrentResolves(t *testing.T) {
	stack := newStack(t, shortener.TypeRandom)
	ctx := context.Background()

	require.NoError(t, stack.links.StartClickFlush(ctx, 25*time.Millisecond))
	defer stack.links.StopClickFlush()

	created, err := stack.links.Create(ctx, domain.CreateLinkRequest{URL: "https://example.com/hot"})
	require.NoError(t, err)

	concurrency := 10
	perWorker := 5
	done := make(chan struct{}, concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < perWorker; j++ {
				target, err := stack.links.Resolve(ctx, created.Code)
				assert.NoError(t, err)
				assert.Equal(t, "https://example.com/hot", target)
			}
		}()
	}

	for i := 0; i < concurrency; i++ {
		<-done
	}

	want := int64(concurrency * perWorker)
	assert.Eventually(t, func() bool {
		link, err := stack.repo.Get(ctx, created.Code)
		return err == nil && link.ClickCount == want
	}, 3*time.Second, 50*time.Millisecond, "all clicks should be flushed to the store")
}
