// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/api"
	"github.com/taibuivan/aula/internal/platform/cache"
)

/*
TestReadiness reports degraded when any dependency fails.
*/
func TestReadiness(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name string
		deps api.HealthDependencies
		want int
	}{
		{"all_healthy", api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy}, http.StatusOK},
		{"postgres_only", api.HealthDependencies{CheckDatabase: healthy}, http.StatusOK},
		{"redis_down", api.HealthDependencies{CheckDatabase: healthy, CheckCache: failing}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liveness, readiness := api.NewHealthHandlers(tt.deps, slog.Default())

			recorder := httptest.NewRecorder()
			readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.want, recorder.Code)

			recorder = httptest.NewRecorder()
			liveness(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	}
}

type countingClearer struct{ calls int }

func (clearer *countingClearer) ClearAuthCache(context.Context) error {
	clearer.calls++
	return nil
}

/*
TestCacheHandler exercises stats, clean and clear against a live store.
*/
func TestCacheHandler(t *testing.T) {
	ctx := context.Background()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	store, err := cache.New(cache.NewRedisBackend(client, "test:cache:"), cache.Options{Clock: mock})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "estudiantes:id:1", "a", time.Minute))
	require.NoError(t, store.Set(ctx, "estudiantes:id:2", "b", time.Hour))

	clearer := &countingClearer{}
	router := chi.NewRouter()
	router.Route("/cache", api.NewCacheHandler(store, clearer).RegisterRoutes)

	send := func(method, path string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(method, path, nil))
		return recorder
	}

	recorder := send(http.MethodGet, "/cache/stats")
	require.Equal(t, http.StatusOK, recorder.Code)

	var stats struct {
		Data cache.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	assert.Equal(t, int64(2), stats.Data.Active)

	mock.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, send(http.MethodPost, "/cache/clean").Code)

	_, found, err := store.Get(ctx, "estudiantes:id:2")
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/cache/clear-auth").Code)
	assert.Equal(t, 1, clearer.calls)

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/cache/clear").Code)
	_, found, err = store.Get(ctx, "estudiantes:id:2")
	require.NoError(t, err)
	assert.False(t, found)
}
