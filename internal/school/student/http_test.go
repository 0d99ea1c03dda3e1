// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
	"github.com/taibuivan/aula/internal/school/student"
)

// asRole attaches an established session with role to every request.
func asRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			store := session.NewStore()
			if role != "" {
				_ = store.Establish(session.Session{
					ID:          "s1",
					UserID:      "u1",
					Username:    "staff",
					DisplayName: "Staff",
					Email:       "staff@aula.school",
					Role:        role,
					CreatedAt:   time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
				})
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithSession(request.Context(), store)))
		})
	}
}

func newRouter(t *testing.T, role sec.UserRole) http.Handler {
	t.Helper()

	service, _, _ := newService(t)
	router := chi.NewRouter()
	router.Use(asRole(role))
	router.Route("/estudiantes", student.NewHandler(service, sec.NewEvaluator()).RegisterRoutes)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

const newStudent = `{"document":"21.111.111-1","first_name":"Ana","last_name":"Soto","birth_date":"2012-04-30","course":"6° Básico A"}`

/*
TestHandler_Permissions maps catalog decisions to status codes.
*/
func TestHandler_Permissions(t *testing.T) {
	tests := []struct {
		name   string
		role   sec.UserRole
		method string
		path   string
		body   string
		want   int
	}{
		{"anonymous_list", "", http.MethodGet, "/estudiantes", "", http.StatusUnauthorized},
		{"teacher_list", sec.RoleTeacher, http.MethodGet, "/estudiantes", "", http.StatusOK},
		{"teacher_create", sec.RoleTeacher, http.MethodPost, "/estudiantes", newStudent, http.StatusForbidden},
		{"secretary_create", sec.RoleSecretary, http.MethodPost, "/estudiantes", newStudent, http.StatusCreated},
		{"admin_delete_missing", sec.RoleAdmin, http.MethodDelete, "/estudiantes/0192f3a4-5b6c-7d8e-9f01-23456789abcd", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := do(newRouter(t, tt.role), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, recorder.Code, recorder.Body.String())
		})
	}
}

/*
TestHandler_CreateThenList returns the created student in the paginated envelope.
*/
func TestHandler_CreateThenList(t *testing.T) {
	router := newRouter(t, sec.RoleAdmin)

	created := do(router, http.MethodPost, "/estudiantes", newStudent)
	require.Equal(t, http.StatusCreated, created.Code)

	var envelope struct {
		Data student.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &envelope))

	fetched := do(router, http.MethodGet, "/estudiantes/"+envelope.Data.ID, "")
	assert.Equal(t, http.StatusOK, fetched.Code)

	listed := do(router, http.MethodGet, "/estudiantes?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, listed.Code)

	var page struct {
		Data []student.Student `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Meta.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Soto", page.Data[0].LastName)
}
