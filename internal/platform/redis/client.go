// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the managed client behind the shared cache tier.

When CACHE_BACKEND=redis, cache entries, active sessions and login attempt
windows all live here, so every API replica sees the same state.
*/
package redis

import (
	"cmp"
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// defaultPoolSize applies when the caller passes zero.
const defaultPoolSize = 10

/*
NewClient parses redisURL and returns a client that has answered a ping.

Description: Idle connections are kept at a fifth of the pool, at least one,
so a quiet replica still serves its first cache read without dialing.

Parameters:
  - context: Context for the initial ping.
  - redisURL: redis:// or rediss:// URL.
  - poolSize: Maximum connections; zero means 10.
  - logger: Structured logger for connection events.
*/
func NewClient(context stdctx.Context, redisURL string, poolSize int, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = cmp.Or(poolSize, defaultPoolSize)
	options.MinIdleConns = max(1, options.PoolSize/5)
	options.MaxIdleConns = max(options.MinIdleConns, options.PoolSize/2)
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
