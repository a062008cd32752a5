package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TTL
	}{
		{"one hour", "1h", TTLOneHour},
		{"one day", "1d", TTLOneDay},
		{"one week", "1w", TTLOneWeek},
		{"one second", "1s", TTLOneSecond},
		{"never", "never", TTLNever},
		{"empty falls back to default", "", DefaultTTL},
		{"unknown falls back to default", "2fortnights", DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTTL(tt.input))
		})
	}
}

func TestTTL_ExpiryFrom(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("never has no expiry", func(t *testing.T) {
		assert.Nil(t, TTLNever.ExpiryFrom(createdAt))
	})

	t.Run("durations are added to creation time", func(t *testing.T) {
		expiry := TTLOneWeek.ExpiryFrom(createdAt)
		require.NotNil(t, expiry)
		assert.Equal(t, createdAt.Add(7*24*time.Hour), *expiry)
	})

	t.Run("expiry is strictly after creation", func(t *testing.T) {
		for _, ttl := range []TTL{TTLOneSecond, TTLOneHour, TTLOneDay, TTLOneWeek} {
			expiry := ttl.ExpiryFrom(createdAt)
			require.NotNil(t, expiry)
			assert.True(t, expiry.After(createdAt))
		}
	})
}

func TestLink_LiveAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		link Link
		want bool
	}{
		{"no expiry is always live", Link{}, true},
		{"future expiry is live", Link{ExpiresAt: &future}, true},
		{"past expiry is not live", Link{ExpiresAt: &past}, false},
		{"expiry exactly now is not live", Link{ExpiresAt: &now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.LiveAt(now))
		})
	}
}
