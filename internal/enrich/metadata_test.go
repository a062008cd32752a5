package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

func servePage(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetch(t *testing.T) {
	t.Run("open graph tags", func(t *testing.T) {
		server := servePage(t, http.StatusOK, "text/html; charset=utf-8", `<html><head>
			<title>Fallback Title</title>
			<meta property="og:title" content="Example Page">
			<meta property="og:description" content="A page about examples.">
			<meta property="og:image" content="https://example.com/preview.png">
		</head><body></body></html>`)

		fetcher := NewFetcher(time.Second)
		meta, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, "Example Page", meta.Title)
		assert.Equal(t, "A page about examples.", meta.Description)
		assert.Equal(t, "https://example.com/preview.png", meta.ImageURL)
		assert.Equal(t, domain.SummarySkipped, meta.SummaryStatus)
	})

	t.Run("title fallback", func(t *testing.T) {
		server := servePage(t, http.StatusOK, "text/html", `<html><head>
			<title>  Plain Page  </title>
		</head><body><p>hi</p></body></html>`)

		fetcher := NewFetcher(time.Second)
		meta, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, "Plain Page", meta.Title)
		assert.Empty(t, meta.Description)
	})

	t.Run("non-HTML content", func(t *testing.T) {
		server := servePage(t, http.StatusOK, "application/pdf", "%PDF-1.4")

		fetcher := NewFetcher(time.Second)
		_, err := fetcher.Fetch(context.Background(), server.URL)
		assert.Error(t, err)
	})

	t.Run("error status", func(t *testing.T) {
		server := servePage(t, http.StatusNotFound, "text/html", "gone")

		fetcher := NewFetcher(time.Second)
		_, err := fetcher.Fetch(context.Background(), server.URL)
		assert.Error(t, err)
	})

	t.Run("honors context deadline", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		t.Cleanup(server.Close)

		fetcher := NewFetcher(time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		assert.Error(t, err)
	})

	t.Run("unreachable host", func(t *testing.T) {
		fetcher := NewFetcher(100 * time.Millisecond)
		_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1")
		assert.Error(t, err)
	})
}
