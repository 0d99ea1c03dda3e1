// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/aula/internal/platform/ctxkey"
	"github.com/taibuivan/aula/internal/platform/session"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// WithClientIP returns a new context carrying the resolved client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClientIP, ip)
}

// GetClientIP retrieves the resolved client address, or "" when no resolver ran.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ctxkey.KeyClientIP).(string)
	return ip
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithSession returns a new context carrying the request's session store.
func WithSession(ctx context.Context, store *session.Store) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, store)
}

// GetSession retrieves the session store from the context.
// It never returns nil: requests without one get a fresh anonymous store.
func GetSession(ctx context.Context) *session.Store {
	store, ok := ctx.Value(ctxkey.KeySession).(*session.Store)
	if !ok || store == nil {
		return session.NewStore()
	}
	return store
}

// EnsureSession returns the context's session store, attaching a fresh
// anonymous one when none is present.
func EnsureSession(ctx context.Context) (context.Context, *session.Store) {
	if store, ok := ctx.Value(ctxkey.KeySession).(*session.Store); ok && store != nil {
		return ctx, store
	}
	store := session.NewStore()
	return WithSession(ctx, store), store
}
