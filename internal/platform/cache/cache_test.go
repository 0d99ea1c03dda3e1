// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/cache"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// newTestStore returns a store over miniredis and a mock clock.
func newTestStore(t *testing.T) (*cache.Store, *clock.Mock, *cache.RedisBackend) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	backend := cache.NewRedisBackend(client, "test:cache:")
	store, err := cache.New(backend, cache.Options{Clock: mock, MemorySize: 64})
	require.NoError(t, err)

	return store, mock, backend
}

/*
TestStore_SetGetExpiry verifies the round trip within TTL and absence after it.
*/
func TestStore_SetGetExpiry(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, "user:id:1", profile{ID: "1", Name: "Ana"}, 10*time.Second))

	var got profile
	found, err := store.GetInto(ctx, "user:id:1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ana", got.Name)

	mock.Add(9 * time.Second)
	_, found, err = store.Get(ctx, "user:id:1")
	require.NoError(t, err)
	assert.True(t, found)

	// Boundary: now == ExpiresAt is already expired
	mock.Add(time.Second)
	_, found, err = store.Get(ctx, "user:id:1")
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestStore_DefaultTTL applies the default for non-positive TTLs.
*/
func TestStore_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", 1, 0))

	mock.Add(3599 * time.Second)
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	mock.Add(time.Second)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestStore_DurableHitAcrossInstances checks that a second store sharing the
durable tier sees writes from the first.
*/
func TestStore_DurableHitAcrossInstances(t *testing.T) {
	ctx := context.Background()
	first, mock, backend := newTestStore(t)

	second, err := cache.New(backend, cache.Options{Clock: mock})
	require.NoError(t, err)

	require.NoError(t, first.Set(ctx, "permissions:role:profesor", []string{"view_notas"}, time.Minute))

	var perms []string
	found, err := second.GetInto(ctx, "permissions:role:profesor", &perms)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"view_notas"}, perms)

	stats, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MemoryEntries)
}

/*
TestStore_InvalidatePattern removes only keys under the given prefix.
*/
func TestStore_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	for _, key := range []string{"user:id:1", "user:username:ana", "permissions:role:admin", "session:active:1"} {
		require.NoError(t, store.Set(ctx, key, key, time.Minute))
	}

	removed, err := store.InvalidatePattern(ctx, "user:*")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	removed, err = store.InvalidatePattern(ctx, "user:*")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)

	for key, want := range map[string]bool{
		"user:id:1":              false,
		"user:username:ana":      false,
		"permissions:role:admin": true,
		"session:active:1":       true,
	} {
		_, found, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, found, key)
	}

	_, err = store.InvalidatePattern(ctx, "user:[")
	assert.Error(t, err)
}

/*
TestStore_InvalidatePatternSpansSlashes removes keys whose variable part
contains '/' from the memory tier and the durable tier alike.
*/
func TestStore_InvalidatePatternSpansSlashes(t *testing.T) {
	ctx := context.Background()
	store, _, backend := newTestStore(t)

	keys := []string{"user:username:ana/b", "user:id:7", "login_attempts:1.2.3.4/x", "login_attempts:10.0.0.1"}
	for _, key := range keys {
		require.NoError(t, store.Set(ctx, key, key, time.Minute))
	}

	removed, err := store.InvalidatePattern(ctx, "user:*")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	removed, err = store.InvalidatePattern(ctx, "login_attempts:*")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	for _, key := range keys {
		_, found, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)

		entry, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, entry, key)
	}
}

/*
TestRemember verifies the producer is called once for values and every time for nil.
*/
func TestRemember(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	calls := 0
	produce := func(context.Context) (*profile, error) {
		calls++
		return &profile{ID: "7", Name: "Luis"}, nil
	}

	for range 3 {
		value, err := cache.Remember(ctx, store, "user:id:7", time.Minute, produce)
		require.NoError(t, err)
		assert.Equal(t, "Luis", value.Name)
	}
	assert.Equal(t, 1, calls)

	nilCalls := 0
	produceNil := func(context.Context) (*profile, error) {
		nilCalls++
		return nil, nil
	}

	for range 2 {
		value, err := cache.Remember(ctx, store, "user:id:missing", time.Minute, produceNil)
		require.NoError(t, err)
		assert.Nil(t, value)
	}
	assert.Equal(t, 2, nilCalls)

	boom := errors.New("boom")
	_, err := cache.Remember(ctx, store, "user:id:err", time.Minute, func(context.Context) (*profile, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

/*
TestTyped covers the typed view.
*/
func TestTyped(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)
	profiles := cache.For[profile](store)

	require.NoError(t, profiles.Set(ctx, "p:1", profile{ID: "1"}, time.Minute))

	value, found, err := profiles.Get(ctx, "p:1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "1", value.ID)

	require.NoError(t, profiles.Delete(ctx, "p:1"))
	require.NoError(t, profiles.Delete(ctx, "p:1"))

	_, found, err = profiles.Get(ctx, "p:1")
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestStore_CleanExpiredAndStats purges expired entries and reports counts.
*/
func TestStore_CleanExpiredAndStats(t *testing.T) {
	ctx := context.Background()
	store, mock, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, "short", 1, 5*time.Second))
	require.NoError(t, store.Set(ctx, "long", 2, time.Hour))
	mock.Add(10 * time.Second)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Active)
	assert.EqualValues(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.MemoryExpired)

	purged, err := store.CleanExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Total)
	assert.Equal(t, 1, stats.MemoryEntries)
	assert.Equal(t, 0, stats.MemoryExpired)

	require.NoError(t, store.Clear(ctx))
	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, cache.Stats{}, stats)
}

// # Failure Propagation

var errBackendDown = errors.New("backend down")

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (*cache.Entry, error) { return nil, errBackendDown }
func (failingBackend) Set(context.Context, cache.Entry) error            { return errBackendDown }
func (failingBackend) Delete(context.Context, string) error              { return errBackendDown }
func (failingBackend) DeleteMatching(context.Context, string) (int64, error) {
	return 0, errBackendDown
}
func (failingBackend) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errBackendDown
}
func (failingBackend) Clear(context.Context) error { return errBackendDown }
func (failingBackend) Stats(context.Context, time.Time) (cache.BackendStats, error) {
	return cache.BackendStats{}, errBackendDown
}

/*
TestStore_BackendFailures checks that every operation surfaces durable errors.
*/
func TestStore_BackendFailures(t *testing.T) {
	ctx := context.Background()
	store, err := cache.New(failingBackend{}, cache.Options{})
	require.NoError(t, err)

	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, errBackendDown)

	assert.ErrorIs(t, store.Set(ctx, "k", 1, time.Minute), errBackendDown)
	assert.ErrorIs(t, store.Delete(ctx, "k"), errBackendDown)
	assert.ErrorIs(t, store.Clear(ctx), errBackendDown)

	_, err = store.InvalidatePattern(ctx, "k*")
	assert.ErrorIs(t, err, errBackendDown)

	_, err = store.CleanExpired(ctx)
	assert.ErrorIs(t, err, errBackendDown)

	_, err = store.Stats(ctx)
	assert.ErrorIs(t, err, errBackendDown)

	_, err = cache.Remember(ctx, store, "k", time.Minute, func(context.Context) (*int, error) {
		t.Fatal("producer must not run when the lookup fails")
		return nil, nil
	})
	assert.ErrorIs(t, err, errBackendDown)

	_, err = cache.New(nil, cache.Options{})
	assert.Error(t, err)
}
