// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/internal/platform/middleware"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
)

// # Fakes

type fakeVerifier struct{}

// fakeVerifier accepts "good-u1" for the current login and "stale-u1" for a
// token issued before the user logged out and back in.
func (fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	sessionIDs := map[string]string{"good-u1": "s1", "stale-u1": "s0"}

	sessionID, ok := sessionIDs[token]
	if !ok {
		return nil, errors.New("invalid token")
	}

	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: sessionID},
		UserID:           "u1",
		Username:         "mrodriguez",
		Role:             string(sec.RoleTeacher),
	}, nil
}

type fakeResolver struct {
	active map[string]*session.Session
	err    error
}

func (resolver fakeResolver) ResolveSession(_ context.Context, userID string) (*session.Session, error) {
	if resolver.err != nil {
		return nil, resolver.err
	}
	return resolver.active[userID], nil
}

func teacherSession() *session.Session {
	return &session.Session{
		ID:          "s1",
		UserID:      "u1",
		Username:    "mrodriguez",
		DisplayName: "María Rodríguez",
		Email:       "mrodriguez@aula.school",
		Role:        sec.RoleTeacher,
		CreatedAt:   time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

// captureState records the session state seen by the final handler.
func captureState(state *session.State) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*state = ctxutil.GetSession(request.Context()).State()
		writer.WriteHeader(http.StatusOK)
	})
}

// # Authenticate

/*
TestAuthenticate_States covers every way a request can arrive.
*/
func TestAuthenticate_States(t *testing.T) {
	resolver := fakeResolver{active: map[string]*session.Session{"u1": teacherSession()}}

	tests := []struct {
		name     string
		header   string
		resolver fakeResolver
		want     session.State
	}{
		{"no_header_is_anonymous", "", resolver, session.StateAnonymous},
		{"valid_token_with_active_session", "Bearer good-u1", resolver, session.StateAuthenticated},
		{"lowercase_scheme", "bearer good-u1", resolver, session.StateAuthenticated},
		{"invalid_token_is_expired", "Bearer forged", resolver, session.StateExpired},
		{"wrong_scheme_is_expired", "Basic good-u1", resolver, session.StateExpired},
		{"logged_out_user_is_expired", "Bearer good-u1", fakeResolver{}, session.StateExpired},
		{"token_from_previous_login_is_expired", "Bearer stale-u1", resolver, session.StateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var state session.State
			handler := middleware.Authenticate(fakeVerifier{}, tt.resolver)(captureState(&state))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.want, state)
		})
	}
}

/*
TestAuthenticate_ResolverFailure surfaces storage errors instead of guessing.
*/
func TestAuthenticate_ResolverFailure(t *testing.T) {
	resolver := fakeResolver{err: apperr.PersistenceFailure(errors.New("redis down"))}
	handler := middleware.Authenticate(fakeVerifier{}, resolver)(http.NotFoundHandler())

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer good-u1")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

// # Guards

func serve(t *testing.T, guard func(http.Handler) http.Handler, header string) int {
	t.Helper()

	resolver := fakeResolver{active: map[string]*session.Session{"u1": teacherSession()}}
	ok := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.Authenticate(fakeVerifier{}, resolver)(guard(ok))

	request := httptest.NewRequest(http.MethodGet, "/estudiantes", nil)
	if header != "" {
		request.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder.Code
}

/*
TestRequireAuth rejects requests without an established session.
*/
func TestRequireAuth(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(t, middleware.RequireAuth, ""))
	assert.Equal(t, http.StatusUnauthorized, serve(t, middleware.RequireAuth, "Bearer forged"))
	assert.Equal(t, http.StatusNoContent, serve(t, middleware.RequireAuth, "Bearer good-u1"))
	assert.Equal(t, http.StatusUnauthorized, serve(t, middleware.RequireAuth, "Bearer stale-u1"))
}

/*
TestRequirePermission checks the teacher role against the catalog.
*/
func TestRequirePermission(t *testing.T) {
	evaluator := sec.NewEvaluator()

	viewStudents := middleware.RequirePermission(evaluator, sec.PermissionFor(sec.ActionView, sec.EntityStudents))
	deleteStudents := middleware.RequirePermission(evaluator, sec.PermissionFor(sec.ActionDelete, sec.EntityStudents))

	assert.Equal(t, http.StatusUnauthorized, serve(t, viewStudents, ""))
	assert.Equal(t, http.StatusNoContent, serve(t, viewStudents, "Bearer good-u1"))
	assert.Equal(t, http.StatusForbidden, serve(t, deleteStudents, "Bearer good-u1"))
}

/*
TestRequireRole enforces the role hierarchy.
*/
func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serve(t, middleware.RequireRole(sec.RoleTeacher), "Bearer good-u1"))
	assert.Equal(t, http.StatusForbidden, serve(t, middleware.RequireRole(sec.RoleAdmin), "Bearer good-u1"))
}

// # Chain Helpers

type originPolicy string

func (suffix originPolicy) AllowedOrigin(origin string) bool {
	return origin == "https://app."+string(suffix)
}

/*
TestCORS only echoes allowed origins and short-circuits pre-flight.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(originPolicy("aula.school"))(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	allowed := httptest.NewRequest(http.MethodOptions, "/", nil)
	allowed.Header.Set("Origin", "https://app.aula.school")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, allowed)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://app.aula.school", recorder.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, foreign)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestThrottle denies requests beyond the burst for one client only, however
the client rewrites its forwarding headers.
*/
func TestThrottle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	throttle := middleware.NewThrottle(ctx, 0.001, 2)
	handler := middleware.ClientIP(nil)(throttle.Handler(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})))

	send := func(peer, forwarded string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = peer + ":40000"
		request.Header.Set("X-Forwarded-For", forwarded)
		request.Header.Set("X-Real-IP", forwarded)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.9", "1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.9", "2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.9", "3.3.3.3"))
	assert.Equal(t, http.StatusOK, send("10.0.0.10", "3.3.3.3"))
}

/*
TestTrustedProxies_Resolve reads forwarding headers only from trusted peers.
*/
func TestTrustedProxies_Resolve(t *testing.T) {
	proxies, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.10 ", ""})
	require.NoError(t, err)

	tests := []struct {
		name      string
		peer      string
		forwarded string
		realIP    string
		want      string
	}{
		{"untrusted_peer_ignores_headers", "203.0.113.50:5555", "1.1.1.1", "2.2.2.2", "203.0.113.50"},
		{"trusted_peer_uses_forwarded", "10.1.2.3:5555", "198.51.100.7", "", "198.51.100.7"},
		{"spoofed_left_entries_skipped", "10.1.2.3:5555", "6.6.6.6, 198.51.100.7", "", "198.51.100.7"},
		{"inner_proxy_hops_skipped", "10.1.2.3:5555", "198.51.100.7, 192.0.2.10", "", "198.51.100.7"},
		{"real_ip_fallback", "192.0.2.10:443", "", "198.51.100.8", "198.51.100.8"},
		{"garbage_headers_fall_back_to_peer", "10.1.2.3:5555", "not-an-ip", "nope", "10.1.2.3"},
		{"no_port_in_remote_addr", "203.0.113.50", "1.1.1.1", "", "203.0.113.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.peer
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				request.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, proxies.Resolve(request))
		})
	}
}

/*
TestParseTrustedProxies_Invalid rejects malformed entries.
*/
func TestParseTrustedProxies_Invalid(t *testing.T) {
	_, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)

	_, err = middleware.ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

/*
TestRealIP never trusts headers without the ClientIP middleware.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:5555"
	request.Header.Set("X-Forwarded-For", "203.0.113.7")
	request.Header.Set("X-Real-IP", "198.51.100.2")

	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))
}

/*
TestPanicRecovery converts a panic into a 500 response.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
