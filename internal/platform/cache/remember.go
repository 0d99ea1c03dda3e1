// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"time"
)

// Producer computes a value on a cache miss. Returning (nil, nil) means
// "nothing to cache".
type Producer[T any] func(context context.Context) (*T, error)

/*
Remember returns the cached value under key, or runs produce and caches its
result.

Description: A nil result is returned as-is and not cached, so the next call
runs produce again. There is no guard against concurrent misses: two callers
may both run produce and the last write wins.

Parameters:
  - store: the cache engine
  - key: cache key
  - ttl: validity; non-positive means the store default
  - produce: value source on a miss

Returns:
  - *T: cached or produced value, nil when produce returned nil
  - error: cache or producer failures
*/
func Remember[T any](context context.Context, store *Store, key string, ttl time.Duration, produce Producer[T]) (*T, error) {
	var cached T
	found, err := store.GetInto(context, key, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return &cached, nil
	}

	value, err := produce(context)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	if err := store.Set(context, key, value, ttl); err != nil {
		return nil, err
	}

	return value, nil
}

// # Typed View

// Typed is a view of a [Store] that encodes and decodes a single value type.
type Typed[V any] struct {
	store *Store
}

// For returns a typed view over store.
func For[V any](store *Store) Typed[V] {
	return Typed[V]{store: store}
}

// Get decodes the value under key.
func (typed Typed[V]) Get(context context.Context, key string) (*V, bool, error) {
	var value V
	found, err := typed.store.GetInto(context, key, &value)
	if err != nil || !found {
		return nil, false, err
	}
	return &value, true, nil
}

// Set stores value under key.
func (typed Typed[V]) Set(context context.Context, key string, value V, ttl time.Duration) error {
	return typed.store.Set(context, key, value, ttl)
}

// Delete removes key.
func (typed Typed[V]) Delete(context context.Context, key string) error {
	return typed.store.Delete(context, key)
}

// Remember is [Remember] bound to this view.
func (typed Typed[V]) Remember(context context.Context, key string, ttl time.Duration, produce Producer[V]) (*V, error) {
	return Remember(context, typed.store, key, ttl, produce)
}
