package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

func TestCreateLink(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/links", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req domain.CreateLinkRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://example.com", req.URL)
			assert.Equal(t, "1h", req.TTL)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(domain.CreateLinkResponse{
				Code:           "abc1234",
				ShortURL:       "http://localhost:8080/abc1234",
				TargetURL:      "https://example.com",
				ExpiresAt:      &expiresAt,
				DeletionSecret: "the-secret",
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		resp, err := c.CreateLink(context.Background(), domain.CreateLinkRequest{
			URL: "https://example.com",
			TTL: "1h",
		})
		require.NoError(t, err)

		assert.Equal(t, "abc1234", resp.Code)
		assert.Equal(t, "the-secret", resp.DeletionSecret)
		require.NotNil(t, resp.ExpiresAt)
		assert.True(t, expiresAt.Equal(*resp.ExpiresAt))
	})

	t.Run("conflict surfaces server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"code already in use"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.CreateLink(context.Background(), domain.CreateLinkRequest{URL: "https://example.com", CustomCode: "taken"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "409")
		assert.Contains(t, err.Error(), "code already in use")
	})

	t.Run("unreachable server", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1")
		_, err := c.CreateLink(context.Background(), domain.CreateLinkRequest{URL: "https://example.com"})
		assert.Error(t, err)
	})
}

func TestGetLink(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/links/abc1234", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(domain.Link{
				Code:       "abc1234",
				TargetURL:  "https://example.com",
				ClickCount: 42,
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		link, err := c.GetLink(context.Background(), "abc1234")
		require.NoError(t, err)
		assert.Equal(t, int64(42), link.ClickCount)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.GetLink(context.Background(), "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("expired", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.GetLink(context.Background(), "old0001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestDeleteLink(t *testing.T) {
	t.Run("success sends secret header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "the-secret", r.Header.Get(deletionSecretHeader))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		assert.NoError(t, c.DeleteLink(context.Background(), "abc1234", "the-secret"))
	})

	t.Run("rejected secret", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.DeleteLink(context.Background(), "abc1234", "guessed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		err := c.DeleteLink(context.Background(), "missing", "whatever")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestListLinks(t *testing.T) {
	t.Run("all links", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.Query().Get("owner"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]*domain.Link{
				{Code: "abc1234"},
				{Code: "def5678"},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		links, err := c.ListLinks(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("owner filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "alice", r.URL.Query().Get("owner"))
			_, _ = w.Write([]byte("[]"))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		links, err := c.ListLinks(context.Background(), "alice")
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}
