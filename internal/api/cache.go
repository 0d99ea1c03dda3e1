// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/cache"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/internal/platform/respond"
)

// AuthCacheClearer drops identity entries without touching other families.
type AuthCacheClearer interface {
	ClearAuthCache(ctx context.Context) error
}

// CacheHandler exposes maintenance of the shared cache.
type CacheHandler struct {
	store *cache.Store
	auth  AuthCacheClearer
}

// NewCacheHandler creates the maintenance endpoints over store.
func NewCacheHandler(store *cache.Store, auth AuthCacheClearer) *CacheHandler {
	return &CacheHandler{store: store, auth: auth}
}

// RegisterRoutes mounts the maintenance routes. Callers guard them.
//
// # Endpoints
//   - GET  /stats      : Entry counts for both tiers.
//   - POST /clean      : Purges expired entries.
//   - POST /clear      : Drops every entry.
//   - POST /clear-auth : Drops users, permissions, sessions and login attempts.
func (handler *CacheHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stats", handler.stats)
	router.Post("/clean", handler.clean)
	router.Post("/clear", handler.clear)
	router.Post("/clear-auth", handler.clearAuth)
}

func (handler *CacheHandler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.store.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, apperr.PersistenceFailure(err))
		return
	}
	respond.OK(writer, stats)
}

func (handler *CacheHandler) clean(writer http.ResponseWriter, request *http.Request) {
	removed, err := handler.store.CleanExpired(request.Context())
	if err != nil {
		respond.Error(writer, request, apperr.PersistenceFailure(err))
		return
	}
	respond.OK(writer, map[string]int64{"removed": removed})
}

func (handler *CacheHandler) clear(writer http.ResponseWriter, request *http.Request) {
	if err := handler.store.Clear(request.Context()); err != nil {
		respond.Error(writer, request, apperr.PersistenceFailure(err))
		return
	}

	// Active sessions live in the cache, so this logs everyone out.
	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "cache_cleared")
	respond.NoContent(writer)
}

func (handler *CacheHandler) clearAuth(writer http.ResponseWriter, request *http.Request) {
	if err := handler.auth.ClearAuthCache(request.Context()); err != nil {
		respond.Error(writer, request, apperr.PersistenceFailure(err))
		return
	}

	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "auth_cache_cleared",
		slog.String("scope", "auth"),
	)
	respond.NoContent(writer)
}
