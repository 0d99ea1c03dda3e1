// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, cache) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backends.
const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
)

// Rate limit window stores.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreCache  = "cache"
)

// # Configuration Schema

// Config holds all runtime configuration for the Aula API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	DatabaseMinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"5"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Required only when a component is configured to use it.
	RedisURL      string `env:"REDIS_URL"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Cryptographic keys for access token signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cache engine
	CacheBackend         string        `env:"CACHE_BACKEND"          envDefault:"postgres"`
	CacheDefaultTTL      time.Duration `env:"CACHE_DEFAULT_TTL"      envDefault:"1h"`
	CacheMemorySize      int           `env:"CACHE_MEMORY_SIZE"      envDefault:"4096"`
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"10m"`

	// Login throttling
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW"       envDefault:"5m"`
	RateLimitStore   string        `env:"RATE_LIMIT_STORE"   envDefault:"cache"`

	// Password hashing (argon2id)
	Argon2MemoryKB    uint32 `env:"ARGON2_MEMORY_KB"   envDefault:"65536"`
	Argon2Time        uint32 `env:"ARGON2_TIME"        envDefault:"3"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"2"`

	// Reverse proxies (addresses or CIDRs) whose X-Forwarded-For / X-Real-IP
	// headers are trusted. Empty means the socket peer is always the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"aula.school"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field rules that struct tags cannot express.
func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheBackendPostgres, CacheBackendRedis:
	default:
		return fmt.Errorf("config: CACHE_BACKEND must be %q or %q, got %q", CacheBackendPostgres, CacheBackendRedis, c.CacheBackend)
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreCache:
	default:
		return fmt.Errorf("config: RATE_LIMIT_STORE must be %q or %q, got %q", RateLimitStoreMemory, RateLimitStoreCache, c.RateLimitStore)
	}

	if c.CacheBackend == CacheBackendRedis && c.RedisURL == "" {
		return fmt.Errorf("config: REDIS_URL is required when CACHE_BACKEND=redis")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

/*
AllowedOrigin reports whether a browser origin may call the API.

Description: Outside development the origin's host must equal the configured
domain or be a subdomain of it. "https://app.aula.school" passes,
"https://evilaula.school" and "https://aula.school.evil.example" do not.
*/
func (c *Config) AllowedOrigin(origin string) bool {
	if c.IsDevelopment() {
		return true
	}

	domain := strings.ToLower(strings.TrimPrefix(c.AllowedOriginSuffix, "."))
	if domain == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}
