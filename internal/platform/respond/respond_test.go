// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/respond"
)

/*
TestError renders the envelope for taxonomy and foreign errors.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantRetry  string
	}{
		{"not_found", apperr.NotFound("Estudiante"), http.StatusNotFound, apperr.CodeNotFound, ""},
		{"rate_limited", apperr.RateLimited(300), http.StatusTooManyRequests, apperr.CodeRateLimited, "300"},
		{"foreign_error_hides_cause", errors.New("dial tcp 10.0.0.5:5432: refused"), http.StatusInternalServerError, apperr.CodePersistenceFailure, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantRetry, recorder.Header().Get("Retry-After"))
			assert.NotContains(t, recorder.Body.String(), "10.0.0.5")

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}
