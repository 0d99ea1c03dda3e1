// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements a sliding-window attempt counter keyed by
(identifier, action), used to throttle credential checks.

Each evaluation prunes timestamps older than the window, denies when the
remaining count has reached the maximum, and otherwise records the attempt.

Window updates are read-modify-write without locking across instances. Two
concurrent checks for the same key may both pass; a [WindowStore] with
compare-and-swap semantics would close that gap.
*/
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/taibuivan/aula/internal/platform/constants"
)

// # Configuration

// Config bounds the attempts allowed per window.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig is five attempts per 300 seconds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: constants.DefaultLoginMaxAttempts,
		Window:      constants.DefaultLoginWindow,
	}
}

// # Result

// Result is the outcome of one [Limiter.Check].
type Result struct {
	Allowed     bool          `json:"allowed"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
	RetryAfter  time.Duration `json:"retry_after"`
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (r Result) RetryAfterSeconds() int {
	return int(math.Ceil(r.RetryAfter.Seconds()))
}

// # Storage

// WindowStore persists the attempt timestamps of one key.
type WindowStore interface {
	Load(context context.Context, key string) ([]time.Time, error)
	Save(context context.Context, key string, window []time.Time, ttl time.Duration) error
	Delete(context context.Context, key string) error
}

// # Limiter

// Limiter evaluates sliding windows over a [WindowStore].
type Limiter struct {
	store  WindowStore
	config Config
	clock  clock.Clock
}

// New builds a limiter. Non-positive config values fall back to the defaults.
func New(store WindowStore, config Config, clk clock.Clock) *Limiter {
	defaults := DefaultConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if clk == nil {
		clk = clock.New()
	}

	return &Limiter{store: store, config: config, clock: clk}
}

// Key builds the storage key for (identifier, action).
func Key(identifier, action string) string {
	return constants.CacheKeyRateLimit + action + ":" + identifier
}

/*
Check evaluates and, when allowed, records one attempt.

Description: Timestamps with now - t >= window are dropped first. A denied
attempt is not recorded, so RetryAfter counts down from the oldest attempt that
is still inside the window.

Returns:
  - Result: Allowed, the attempt count after evaluation, and RetryAfter (>= 1s) when denied
  - error: storage failures
*/
func (limiter *Limiter) Check(context context.Context, identifier, action string) (Result, error) {
	key := Key(identifier, action)
	now := limiter.clock.Now()

	window, err := limiter.store.Load(context, key)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit_load_failed: %w", err)
	}

	// 1. Prune attempts that left the window
	live := window[:0]
	for _, attempt := range window {
		if now.Sub(attempt) < limiter.config.Window {
			live = append(live, attempt)
		}
	}

	// 2. Deny when the window is full
	if len(live) >= limiter.config.MaxAttempts {
		oldest := live[0]
		for _, attempt := range live[1:] {
			if attempt.Before(oldest) {
				oldest = attempt
			}
		}

		retry := limiter.config.Window - now.Sub(oldest)
		retry = time.Duration(math.Ceil(retry.Seconds())) * time.Second
		if retry < time.Second {
			retry = time.Second
		}

		return Result{
			Allowed:     false,
			Attempts:    len(live),
			MaxAttempts: limiter.config.MaxAttempts,
			RetryAfter:  retry,
		}, nil
	}

	// 3. Record this attempt
	live = append(live, now)
	if err := limiter.store.Save(context, key, live, limiter.config.Window); err != nil {
		return Result{}, fmt.Errorf("ratelimit_save_failed: %w", err)
	}

	return Result{
		Allowed:     true,
		Attempts:    len(live),
		MaxAttempts: limiter.config.MaxAttempts,
	}, nil
}

// Reset forgets every attempt for (identifier, action).
func (limiter *Limiter) Reset(context context.Context, identifier, action string) error {
	if err := limiter.store.Delete(context, Key(identifier, action)); err != nil {
		return fmt.Errorf("ratelimit_reset_failed: %w", err)
	}
	return nil
}
