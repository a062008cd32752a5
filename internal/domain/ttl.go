package domain

import (
	"time"
)

// TTL is an enumerated time-to-live option for a link
type TTL string

const (
	TTLOneSecond TTL = "1s" // retained for tests
	TTLOneHour   TTL = "1h"
	TTLOneDay    TTL = "1d"
	TTLOneWeek   TTL = "1w"
	TTLNever     TTL = "never"

	// DefaultTTL is applied when the caller supplies an unknown or empty TTL
	DefaultTTL = TTLOneDay
)

var ttlDurations = map[TTL]time.Duration{
	TTLOneSecond: time.Second,
	TTLOneHour:   time.Hour,
	TTLOneDay:    24 * time.Hour,
	TTLOneWeek:   7 * 24 * time.Hour,
}

// ParseTTL normalizes a caller-supplied TTL string. Unknown values fall back
// to DefaultTTL rather than failing the request.
func ParseTTL(s string) TTL {
	ttl := TTL(s)
	if ttl == TTLNever {
		return ttl
	}
	if _, ok := ttlDurations[ttl]; ok {
		return ttl
	}
	return DefaultTTL
}

// ExpiryFrom returns the expiry instant for a link created at the given
// time, or nil for TTLNever.
func (t TTL) ExpiryFrom(createdAt time.Time) *time.Time {
	d, ok := ttlDurations[t]
	if !ok {
		return nil
	}
	expiry := createdAt.Add(d)
	return &expiry
}
