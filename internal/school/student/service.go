// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import (
	"context"
	stdcontext "context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/cache"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/validate"
	"github.com/taibuivan/aula/pkg/pagination"
	"github.com/taibuivan/aula/pkg/uuid"
)

// invalidationPattern matches every key the service writes.
const invalidationPattern = constants.CacheKeyStudents + "*"

// Page is one memoized page of the registry.
type Page struct {
	Items []*Student      `json:"items"`
	Page  pagination.Page `json:"page"`
}

// Service implements the student registry use cases.
type Service struct {
	repo   Repository
	pages  cache.Typed[Page]
	byID   cache.Typed[Student]
	store  *cache.Store
	logger *slog.Logger
}

// NewService wires the registry to its repository and the shared cache.
func NewService(repo Repository, store *cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:   repo,
		pages:  cache.For[Page](store),
		byID:   cache.For[Student](store),
		store:  store,
		logger: logger,
	}
}

func listKey(page, pageSize int) string {
	return fmt.Sprintf("%slist:%d:%d", constants.CacheKeyStudents, page, pageSize)
}

func idKey(id string) string {
	return constants.CacheKeyStudents + "id:" + id
}

/*
List returns one page of students.

Description: pageSize is clamped to [1, pagination.MaxLimit] and page to at
least 1 before the cache key is built, so equivalent requests share an entry.
A page past the end is served as the last page.

Parameters:
  - context: context.Context
  - page: int (1-based)
  - pageSize: int

Returns:
  - *Page: items plus the page descriptor
  - error: PersistenceFailure
*/
func (service *Service) List(context context.Context, page, pageSize int) (*Page, error) {
	page = max(page, 1)
	pageSize = min(max(pageSize, 1), pagination.MaxLimit)

	result, err := service.pages.Remember(context, listKey(page, pageSize), constants.StudentCacheTTL, func(context stdcontext.Context) (*Page, error) {
		total, err := service.repo.Count(context)
		if err != nil {
			return nil, err
		}

		window := pagination.Paginate(total, page, pageSize)
		items := []*Student{}

		if total > 0 {
			items, err = service.repo.List(context, window.PageSize, window.Offset)
			if err != nil {
				return nil, err
			}
		}

		return &Page{Items: items, Page: window}, nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}

	return result, nil
}

// Get returns the student with the given ID.
func (service *Service) Get(context context.Context, id string) (*Student, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceName)
	}

	student, err := service.byID.Remember(context, idKey(id), constants.StudentCacheTTL, func(context stdcontext.Context) (*Student, error) {
		found, err := service.repo.FindByID(context, id)
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, nil
		}
		return found, err
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}

	if student == nil {
		return nil, apperr.NotFound(resourceName)
	}
	return student, nil
}

/*
Create registers a student.

Returns:
  - *Student: the stored student with its generated ID
  - error: ValidationError, Conflict (duplicate document) or PersistenceFailure
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Student, error) {
	input.Document = strings.TrimSpace(input.Document)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Course = strings.TrimSpace(input.Course)

	validator := &validate.Validator{}
	validator.Required(FieldDocument, input.Document).MaxLen(FieldDocument, input.Document, 20).
		Required(FieldFirstName, input.FirstName).MaxLen(FieldFirstName, input.FirstName, 100).
		Required(FieldLastName, input.LastName).MaxLen(FieldLastName, input.LastName, 100).
		Required(FieldCourse, input.Course).MaxLen(FieldCourse, input.Course, 50).
		Date(FieldBirthDate, input.BirthDate)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	birthDate, _ := time.Parse(time.DateOnly, input.BirthDate)
	student := &Student{
		ID:        uuid.New(),
		Document:  input.Document,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: birthDate,
		Course:    input.Course,
	}

	if err := service.repo.Create(context, student); err != nil {
		return nil, apperr.Translate(err)
	}

	if err := service.invalidate(context); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "student_created", slog.String("student_id", student.ID))
	return student, nil
}

// Delete removes a student.
func (service *Service) Delete(context context.Context, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound(resourceName)
	}

	if err := service.repo.Delete(context, id); err != nil {
		return apperr.Translate(err)
	}

	if err := service.invalidate(context); err != nil {
		return err
	}

	service.logger.WarnContext(context, "student_deleted", slog.String("student_id", id))
	return nil
}

// invalidate drops every memoized page and lookup.
func (service *Service) invalidate(context context.Context) error {
	removed, err := service.store.InvalidatePattern(context, invalidationPattern)
	if err != nil {
		return apperr.PersistenceFailure(err)
	}

	service.logger.DebugContext(context, "student_cache_invalidated", slog.Int64("removed", removed))
	return nil
}
