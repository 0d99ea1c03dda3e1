// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/internal/platform/respond"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// SessionResolver returns the server-side active session of a user, or nil
// when the user has logged out or the session expired.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID string) (*session.Session, error)
}

// Authenticate binds a [*session.Store] to every request.
//
// # Flow
//  1. Reuse the request's store or attach an anonymous one.
//  2. No 'Authorization: Bearer <token>' header: continue anonymous.
//  3. Malformed or invalid token: mark the store expired and continue.
//  4. Valid token: look up the active session and establish it only when its
//     ID matches the token's jti. Tokens from an earlier login, or a missing
//     session, mark the store expired.
//
// Anonymous and expired requests still reach public routes such as login;
// [RequireAuth] rejects them elsewhere.
func Authenticate(verifier TokenVerifier, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx, store := ctxutil.EnsureSession(request.Context())
			request = request.WithContext(ctx)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				store.Expire()
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				store.Expire()
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Server-side Session ────────────────────────────────────────
			active, err := resolver.ResolveSession(ctx, claims.UserID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if active == nil || active.UserID != claims.UserID || active.ID != claims.ID || store.Establish(*active) != nil {
				store.Expire()
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAuth blocks requests without an established session.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !ctxutil.GetSession(request.Context()).IsAuthenticated() {
			respond.Error(writer, request, apperr.SessionAbsent())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose session role is below the target role.
// It implies [RequireAuth].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			store := ctxutil.GetSession(request.Context())

			if !store.IsAuthenticated() {
				respond.Error(writer, request, apperr.SessionAbsent())
				return
			}

			if !store.Role().AtLeast(role) {
				respond.Error(writer, request, apperr.PermissionDenied())
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequirePermission blocks requests whose session role lacks permission.
// It implies [RequireAuth]. The response never names the missing permission.
func RequirePermission(evaluator *sec.Evaluator, permission sec.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			store := ctxutil.GetSession(request.Context())

			if !store.IsAuthenticated() {
				respond.Error(writer, request, apperr.SessionAbsent())
				return
			}

			if !evaluator.HasPermission(store.Role(), permission) {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "permission_denied",
					slog.String("role", string(store.Role())),
					slog.String("permission", string(permission)),
				)
				respond.Error(writer, request, apperr.PermissionDenied())
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
