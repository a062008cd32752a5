package config

import (
	"fmt"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/shortener"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Sweeper   SweeperConfig
	Logging   LoggingConfig
	Shortener ShortenerConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	ServerURL string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// CacheConfig holds resolve-cache configuration
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	FlushInterval time.Duration
}

// SweeperConfig holds expired-link cleanup configuration
type SweeperConfig struct {
	Interval      time.Duration
	ShutdownGrace time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool
}

// ShortenerConfig holds code-generation configuration
type ShortenerConfig struct {
	shortener.Config

	// MaxRetries bounds insert attempts for generated codes
	MaxRetries int

	// EnrichMetadata enables the asynchronous page-metadata fetch
	EnrichMetadata bool
}

// New creates a config and validates it
func New(server ServerConfig, db DatabaseConfig, cache CacheConfig, sweeper SweeperConfig, logging LoggingConfig, short ShortenerConfig) (*Config, error) {
	cfg := &Config{
		Server:    server,
		Database:  db,
		Cache:     cache,
		Sweeper:   sweeper,
		Logging:   logging,
		Shortener: short,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address required for redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}

	if c.Cache.FlushInterval <= 0 {
		return fmt.Errorf("cache flush interval must be positive, got: %v", c.Cache.FlushInterval)
	}

	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper interval must be positive, got: %v", c.Sweeper.Interval)
	}

	if c.Sweeper.ShutdownGrace <= 0 {
		return fmt.Errorf("sweeper shutdown grace must be positive, got: %v", c.Sweeper.ShutdownGrace)
	}

	if c.Shortener.MaxRetries <= 0 {
		return fmt.Errorf("shortener max retries must be positive, got: %d", c.Shortener.MaxRetries)
	}

	return nil
}
