package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripping-alien/shortlink-sub000/internal/shortener"
)

func validArgs() (ServerConfig, DatabaseConfig, CacheConfig, SweeperConfig, LoggingConfig, ShortenerConfig) {
	return ServerConfig{Port: "8080", ServerURL: "http://localhost:8080"},
		DatabaseConfig{Path: "links.db"},
		CacheConfig{Backend: CacheBackendMemory, FlushInterval: 30 * time.Second},
		SweeperConfig{Interval: time.Minute, ShutdownGrace: 5 * time.Second},
		LoggingConfig{},
		ShortenerConfig{Config: shortener.DefaultConfig(), MaxRetries: 5}
}

func TestNew(t *testing.T) {
	server, db, cache, sweeper, logging, short := validArgs()

	cfg, err := New(server, db, cache, sweeper, logging, short)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Sweeper.Interval)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig, *DatabaseConfig, *CacheConfig, *SweeperConfig, *ShortenerConfig)
	}{
		{
			name:   "empty port",
			mutate: func(s *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) { s.Port = "" },
		},
		{
			name:   "empty server URL",
			mutate: func(s *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) { s.ServerURL = "" },
		},
		{
			name:   "empty database path",
			mutate: func(_ *ServerConfig, d *DatabaseConfig, _ *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) { d.Path = "" },
		},
		{
			name: "unknown cache backend",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, c *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) {
				c.Backend = "memcached"
			},
		},
		{
			name: "redis backend without address",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, c *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) {
				c.Backend = CacheBackendRedis
			},
		},
		{
			name: "zero flush interval",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, c *CacheConfig, _ *SweeperConfig, _ *ShortenerConfig) {
				c.FlushInterval = 0
			},
		},
		{
			name: "negative sweeper interval",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, s *SweeperConfig, _ *ShortenerConfig) {
				s.Interval = -time.Second
			},
		},
		{
			name: "zero shutdown grace",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, s *SweeperConfig, _ *ShortenerConfig) {
				s.ShutdownGrace = 0
			},
		},
		{
			name: "zero max retries",
			mutate: func(_ *ServerConfig, _ *DatabaseConfig, _ *CacheConfig, _ *SweeperConfig, sh *ShortenerConfig) {
				sh.MaxRetries = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, db, cache, sweeper, logging, short := validArgs()
			tt.mutate(&server, &db, &cache, &sweeper, &short)

			_, err := New(server, db, cache, sweeper, logging, short)
			assert.Error(t, err)
		})
	}
}

func TestRedisBackendWithAddress(t *testing.T) {
	server, db, cache, sweeper, logging, short := validArgs()
	cache.Backend = CacheBackendRedis
	cache.RedisAddr = "localhost:6379"

	_, err := New(server, db, cache, sweeper, logging, short)
	assert.NoError(t, err)
}
