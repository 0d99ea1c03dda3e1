// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and session state into every request lifecycle.

Standard Stack:

  - Origin: Client address resolution, trusting proxy headers only from
    configured proxies.
  - Trace: RequestID generation for log correlation.
  - Log: Structured activity logging (slog), tagged with the session user.
  - Guard: Per-IP throttling, CORS validation and session authorization.
  - Safe: Panic recovery to prevent server crashes.
*/
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Reuse the client's ID when provided
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Otherwise generate a time-sortable one
			if requestID == "" {
				if id, err := uuid.NewV7(); err == nil {
					requestID = id.String()
				} else {
					requestID = uuid.NewString()
				}
			}

			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every request with status and latency.
//
// It injects a request-scoped logger and an anonymous session store into the
// context. [Authenticate] later fills that same store, so the final log line
// carries the user_id of authenticated requests.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(request.Context())),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", RealIP(request)),
			)

			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			ctx, store := ctxutil.EnsureSession(ctx)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			logLevel := slog.LevelInfo
			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			attrs := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
				slog.String("user_agent", request.UserAgent()),
			}

			if current, ok := store.Current(); ok {
				attrs = append(attrs, slog.String("user_id", current.UserID))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", attrs...)
		})
	}
}

// # Request Throttling

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits requests per IP with a token bucket.
//
// It guards the whole API against floods and is independent of the
// sliding-window login limiter.
type Throttle struct {
	mu      sync.Mutex
	clients map[string]*throttleClient
	rps     rate.Limit
	burst   int
}

// NewThrottle creates a [Throttle] and starts its idle-client sweeper, which
// stops when ctx is cancelled.
func NewThrottle(ctx context.Context, rps float64, burst int) *Throttle {
	throttle := &Throttle{
		clients: make(map[string]*throttleClient),
		rps:     rate.Limit(rps),
		burst:   burst,
	}

	go throttle.sweep(ctx)
	return throttle
}

func (throttle *Throttle) sweep(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			throttle.mu.Lock()
			for ip, client := range throttle.clients {
				if time.Since(client.lastSeen) > constants.RateLimitClientTTL {
					delete(throttle.clients, ip)
				}
			}
			throttle.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// allow consumes one token for ip.
func (throttle *Throttle) allow(ip string) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	client, found := throttle.clients[ip]
	if !found {
		client = &throttleClient{limiter: rate.NewLimiter(throttle.rps, throttle.burst)}
		throttle.clients[ip] = client
	}

	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

// Handler returns the throttling middleware.
func (throttle *Throttle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !throttle.allow(RealIP(request)) {
			writer.Header().Set(constants.HeaderRetryAfter, "1")
			writeError(writer, http.StatusTooManyRequests, "RATE_LIMITED", "Demasiadas solicitudes")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace, and returns 500.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stackTrace := make([]byte, 2048)
					length := runtime.Stack(stackTrace, false)

					ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "panic_recovered",
						slog.Any("error", err),
						slog.String("stack", string(stackTrace[:length])),
					)

					writeError(writer, http.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor")
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy interface {
	AllowedOrigin(origin string) bool
}

// CORS answers cross-origin requests for origins accepted by policy.
func CORS(policy OriginPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			if policy.AllowedOrigin(origin) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, Retry-After")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", constants.HeaderOrigin)
			}

			// Pre-flight
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Middleware Helpers

// writeError outputs a minimal JSON error payload for failures raised before
// the response helpers are reachable.
func writeError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]string{
		constants.FieldCode:  code,
		constants.FieldError: message,
	})
}
