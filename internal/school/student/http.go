// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aula/internal/platform/middleware"
	requestutil "github.com/taibuivan/aula/internal/platform/request"
	"github.com/taibuivan/aula/internal/platform/respond"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/pkg/pagination"
)

// Handler exposes the registry under /api/v1/estudiantes.
type Handler struct {
	service   *Service
	evaluator *sec.Evaluator
}

func NewHandler(service *Service, evaluator *sec.Evaluator) *Handler {
	return &Handler{service: service, evaluator: evaluator}
}

// RegisterRoutes mounts the registry routes, each guarded by its permission.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	guard := func(action string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(handler.evaluator, sec.PermissionFor(action, sec.EntityStudents))
	}

	router.With(guard(sec.ActionView)).Get("/", handler.listStudents)
	router.With(guard(sec.ActionView)).Get("/{id}", handler.getStudent)
	router.With(guard(sec.ActionCreate)).Post("/", handler.createStudent)
	router.With(guard(sec.ActionDelete)).Delete("/{id}", handler.deleteStudent)
}

func (handler *Handler) listStudents(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	page, err := handler.service.List(request.Context(), params.Page, params.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, page.Page.Meta())
}

func (handler *Handler) getStudent(writer http.ResponseWriter, request *http.Request) {
	student, err := handler.service.Get(request.Context(), requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, student)
}

func (handler *Handler) createStudent(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	student, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, student)
}

func (handler *Handler) deleteStudent(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
