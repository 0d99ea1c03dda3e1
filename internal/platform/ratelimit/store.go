// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/aula/internal/platform/cache"
)

// # Memory Store

// MemoryStore keeps windows in process memory. Windows are not shared across
// instances, so each instance enforces its own limit.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]time.Time)}
}

// Load returns a copy of the window under key.
func (store *MemoryStore) Load(_ context.Context, key string) ([]time.Time, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return slices.Clone(store.windows[key]), nil
}

// Save replaces the window under key. Pruning happens in the limiter, so ttl is unused.
func (store *MemoryStore) Save(_ context.Context, key string, window []time.Time, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.windows[key] = slices.Clone(window)
	return nil
}

// Delete drops the window under key.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.windows, key)
	return nil
}

// # Cache Store

// CacheWindowStore keeps windows in the shared cache so every instance sees
// the same attempts.
type CacheWindowStore struct {
	windows cache.Typed[[]time.Time]
}

// NewCacheWindowStore stores windows through the given cache.
func NewCacheWindowStore(store *cache.Store) *CacheWindowStore {
	return &CacheWindowStore{windows: cache.For[[]time.Time](store)}
}

// Load returns the window under key, empty when absent or expired.
func (store *CacheWindowStore) Load(context context.Context, key string) ([]time.Time, error) {
	window, found, err := store.windows.Get(context, key)
	if err != nil || !found {
		return nil, err
	}
	return *window, nil
}

// Save writes the window with a TTL of one full window.
func (store *CacheWindowStore) Save(context context.Context, key string, window []time.Time, ttl time.Duration) error {
	return store.windows.Set(context, key, window, ttl)
}

// Delete removes the window under key.
func (store *CacheWindowStore) Delete(context context.Context, key string) error {
	return store.windows.Delete(context, key)
}
