// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, cache taxonomy and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities, login windows and IP tracking TTLs.
  - Cache: Default TTLs and key prefixes.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "aula-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// DefaultLoginMaxAttempts is the number of login attempts allowed per window.
	DefaultLoginMaxAttempts = 5

	// DefaultLoginWindow is the sliding window for login attempts.
	DefaultLoginWindow = 300 * time.Second

	// ActionLogin is the rate limiter action name for credential checks.
	ActionLogin = "login"
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "aula.school"

	// AccessTokenTTL matches the lifetime of the server-side active session.
	AccessTokenTTL = 30 * time.Minute

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
)

// # Cache

const (
	// DefaultCacheTTL applies when a caller passes a non-positive TTL.
	DefaultCacheTTL = 3600 * time.Second

	// DefaultCacheMemorySize bounds the in-process tier.
	DefaultCacheMemorySize = 4096

	// DefaultCacheCleanupInterval is how often the janitor purges expired rows.
	DefaultCacheCleanupInterval = 10 * time.Minute

	// UserCacheTTL covers cached accounts and active sessions.
	UserCacheTTL = 1800 * time.Second

	// PermissionCacheTTL covers role permission sets and login-attempt lists.
	PermissionCacheTTL = 3600 * time.Second

	// StudentCacheTTL covers memoized student pages and lookups.
	StudentCacheTTL = 600 * time.Second

	// LoginAttemptHistory is how many attempts are kept per IP.
	LoginAttemptHistory = 10
)

// # Cache Key Taxonomy

const (
	CacheKeyUserByID       = "user:id:"
	CacheKeyUserByUsername = "user:username:"
	CacheKeyRolePerms      = "permissions:role:"
	CacheKeyActiveSession  = "session:active:"
	CacheKeyLoginAttempts  = "login_attempts:"
	CacheKeyRateLimit      = "rate_limit:"
	CacheKeyStudents       = "estudiantes:"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaSchool = "school"
)

// # Redis Prefixes

const (
	// RedisPrefixCache namespaces cache entries so Clear never touches other keys.
	RedisPrefixCache = "aula:cache:"
)
