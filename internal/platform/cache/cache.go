// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides the two-tier cache-aside engine shared by every service.

Reads go to a bounded in-process LRU first and fall back to a durable [Backend]
(PostgreSQL or Redis). A hit in the durable tier repopulates memory. Writes go
to both tiers.

Core Rules:

  - Visibility: an entry is visible only while now < ExpiresAt, in both tiers,
    even before the janitor purges it.
  - Encoding: values are JSON at the boundary; typed access goes through
    [Remember] and [Typed].
  - Failures: backend errors propagate wrapped; the store never retries.

The memory tier is per process. Instances reconcile through the durable tier
on a miss, so a delete on one instance may be served stale from another
instance's memory until that entry expires.
*/
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taibuivan/aula/internal/platform/constants"
)

// # Entry

// Entry is one cached value with its validity window.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// Expired reports whether the entry is no longer visible at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// # Statistics

// Stats describes both tiers at a point in time.
type Stats struct {
	Total         int64 `json:"total_entries"`
	Active        int64 `json:"active_entries"`
	Expired       int64 `json:"expired_entries"`
	MemoryEntries int   `json:"memory_entries"`
	MemoryExpired int   `json:"memory_expired"`
}

// # Store

// Options configures a [Store]. Zero values fall back to the platform defaults.
type Options struct {
	DefaultTTL time.Duration
	MemorySize int
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Store is the cache engine. It is safe for concurrent use.
type Store struct {
	backend    Backend
	memory     *lru.Cache[string, Entry]
	clock      clock.Clock
	defaultTTL time.Duration
	logger     *slog.Logger
}

// New builds a [Store] over the given durable backend.
func New(backend Backend, options Options) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("cache: backend is required")
	}

	if options.DefaultTTL <= 0 {
		options.DefaultTTL = constants.DefaultCacheTTL
	}
	if options.MemorySize <= 0 {
		options.MemorySize = constants.DefaultCacheMemorySize
	}
	if options.Clock == nil {
		options.Clock = clock.New()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	memory, err := lru.New[string, Entry](options.MemorySize)
	if err != nil {
		return nil, fmt.Errorf("cache: memory tier: %w", err)
	}

	return &Store{
		backend:    backend,
		memory:     memory,
		clock:      options.Clock,
		defaultTTL: options.DefaultTTL,
		logger:     options.Logger,
	}, nil
}

// Now returns the store's notion of the current time.
func (store *Store) Now() time.Time {
	return store.clock.Now()
}

/*
Get returns the raw JSON value stored under key.

Description: Memory first; on a miss the durable tier is consulted and a live
hit repopulates memory. Expired entries in either tier are treated as absent.

Returns:
  - json.RawMessage: the stored value
  - bool: false when absent or expired
  - error: durable tier failures
*/
func (store *Store) Get(context context.Context, key string) (json.RawMessage, bool, error) {
	now := store.clock.Now()

	// 1. Memory tier
	if entry, ok := store.memory.Get(key); ok {
		if !entry.Expired(now) {
			return entry.Value, true, nil
		}
		store.memory.Remove(key)
	}

	// 2. Durable tier
	entry, err := store.backend.Get(context, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache_get_failed: %w", err)
	}
	if entry == nil || entry.Expired(now) {
		return nil, false, nil
	}

	// 3. Repopulate memory from the durable hit
	store.memory.Add(key, *entry)
	return entry.Value, true, nil
}

// GetInto decodes the value under key into destination.
func (store *Store) GetInto(context context.Context, key string, destination any) (bool, error) {
	raw, ok, err := store.Get(context, key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(raw, destination); err != nil {
		return false, fmt.Errorf("cache_decode_failed: %s: %w", key, err)
	}

	return true, nil
}

/*
Set encodes value as JSON and writes it to both tiers.

Description: A non-positive ttl means the configured default. The durable write
is an upsert, so an existing key is replaced with a fresh validity window.
*/
func (store *Store) Set(context context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache_encode_failed: %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = store.defaultTTL
	}

	now := store.clock.Now()
	entry := Entry{
		Key:       key,
		Value:     raw,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := store.backend.Set(context, entry); err != nil {
		// Never leave memory ahead of a failed durable write
		store.memory.Remove(key)
		return fmt.Errorf("cache_set_failed: %w", err)
	}

	store.memory.Add(key, entry)
	return nil
}

// Delete removes key from both tiers. Deleting a missing key is not an error.
func (store *Store) Delete(context context.Context, key string) error {
	store.memory.Remove(key)

	if err := store.backend.Delete(context, key); err != nil {
		return fmt.Errorf("cache_delete_failed: %w", err)
	}

	return nil
}

/*
InvalidatePattern removes every entry whose key matches a shell glob.

Description: Supports '*', '?', '[...]' and '{a,b}'. Keys use ':' as separator,
so "user:*" matches "user:id:7". '*' also spans '/', which may appear in
usernames and forwarded addresses.

Returns:
  - int64: number of durable entries removed
  - error: invalid pattern or durable tier failures
*/
func (store *Store) InvalidatePattern(context context.Context, pattern string) (int64, error) {
	if !validPattern(pattern) {
		return 0, fmt.Errorf("cache: invalid pattern %q", pattern)
	}

	for _, key := range store.memory.Keys() {
		if matchKey(pattern, key) {
			store.memory.Remove(key)
		}
	}

	removed, err := store.backend.DeleteMatching(context, pattern)
	if err != nil {
		return 0, fmt.Errorf("cache_invalidate_failed: %w", err)
	}

	return removed, nil
}

// CleanExpired purges expired entries from both tiers and returns the durable count.
func (store *Store) CleanExpired(context context.Context) (int64, error) {
	now := store.clock.Now()

	for _, key := range store.memory.Keys() {
		if entry, ok := store.memory.Peek(key); ok && entry.Expired(now) {
			store.memory.Remove(key)
		}
	}

	purged, err := store.backend.DeleteExpired(context, now)
	if err != nil {
		return 0, fmt.Errorf("cache_clean_failed: %w", err)
	}

	return purged, nil
}

// Clear empties both tiers.
func (store *Store) Clear(context context.Context) error {
	store.memory.Purge()

	if err := store.backend.Clear(context); err != nil {
		return fmt.Errorf("cache_clear_failed: %w", err)
	}

	return nil
}

// Stats counts durable and memory entries.
func (store *Store) Stats(context context.Context) (Stats, error) {
	now := store.clock.Now()

	durable, err := store.backend.Stats(context, now)
	if err != nil {
		return Stats{}, fmt.Errorf("cache_stats_failed: %w", err)
	}

	stats := Stats{
		Total:   durable.Total,
		Active:  durable.Active,
		Expired: durable.Total - durable.Active,
	}

	for _, entry := range store.memory.Values() {
		stats.MemoryEntries++
		if entry.Expired(now) {
			stats.MemoryExpired++
		}
	}

	return stats, nil
}
