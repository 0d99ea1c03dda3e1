// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aula/internal/platform/middleware"
	"github.com/taibuivan/aula/internal/users/auth"
)

/*
TestHandler_LoginThrottleIgnoresForwardedHeaders keeps counting attempts
against the socket peer when the client rotates X-Forwarded-For.
*/
func TestHandler_LoginThrottleIgnoresForwardedHeaders(t *testing.T) {
	f := newFixture(t, fakeTokens{})

	router := chi.NewRouter()
	router.Use(middleware.ClientIP(nil))
	router.Mount("/auth", auth.NewHandler(f.service).Routes())

	attempt := func(i int, secret string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"username":"mrodriguez","password":%q}`, secret)
		request := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		request.RemoteAddr = "198.51.100.20:51000"
		request.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		request.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	for i := range 5 {
		assert.Equal(t, http.StatusUnauthorized, attempt(i, "otra-clave").Code)
	}

	denied := attempt(99, password)
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	assert.Equal(t, "300", denied.Header().Get("Retry-After"))
}
