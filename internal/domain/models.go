package domain

import (
	"time"
)

// Link represents a shortened link record as stored by the identity store
type Link struct {
	Code          string     `json:"code"`
	TargetURL     string     `json:"target_url"`
	SecretHash    string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // nil means the link never expires
	ClickCount    int64      `json:"click_count"`
	OwnerID       string     `json:"owner_id,omitempty"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	SummaryStatus string     `json:"summary_status,omitempty"`
}

// LiveAt reports whether the link is live at the given instant. A link is
// live iff it has no expiry or the expiry is strictly in the future. The
// resolver and the sweeper both evaluate liveness through this rule.
func (l *Link) LiveAt(now time.Time) bool {
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// Summary status values set by the enrichment pipeline.
const (
	SummaryPending = "pending"
	SummarySkipped = "skipped"
	SummaryReady   = "ready"
)

// Metadata holds the asynchronously enriched page metadata for a link
type Metadata struct {
	Title         string
	Description   string
	ImageURL      string
	Summary       string
	SummaryStatus string
}

// CacheEntry represents a resolve-path cache entry. PendingClicks buffers
// click increments until the background flush persists them.
type CacheEntry struct {
	TargetURL     string     `json:"target_url"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	PendingClicks int64      `json:"pending_clicks"`
	LastAccessAt  time.Time  `json:"last_access_at"`
	Dirty         bool       `json:"dirty"` // Indicates unflushed pending clicks
}

// CreateLinkRequest represents the request to create a short link
type CreateLinkRequest struct {
	URL        string `json:"url"`
	TTL        string `json:"ttl,omitempty"`
	CustomCode string `json:"custom_code,omitempty"`
	OwnerID    string `json:"owner_id,omitempty"`
}

// CreateLinkResponse represents the response when creating a short link.
// DeletionSecret is issued exactly once, here; only its hash is stored.
type CreateLinkResponse struct {
	Code           string     `json:"code"`
	ShortURL       string     `json:"short_url"`
	TargetURL      string     `json:"target_url"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	DeletionSecret string     `json:"deletion_secret"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DeleteLinkRequest carries the caller-presented deletion secret
type DeleteLinkRequest struct {
	Secret string `json:"secret"`
}
