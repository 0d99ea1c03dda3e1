// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/dberr"
)

/*
TestWrap maps driver errors onto the application taxonomy.
*/
func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict},
		{"foreign_key_violation", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, apperr.CodeConflict},
		{"other_sqlstate", &pgconn.PgError{Code: pgerrcode.QueryCanceled}, apperr.CodePersistenceFailure},
		{"connection_error", errors.New("connection refused"), apperr.CodePersistenceFailure},
		{"app_error_passes_through", apperr.PermissionDenied(), apperr.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperr.HasCode(dberr.Wrap(tt.err, "get_student", "Estudiante"), tt.code))
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "get_student", "Estudiante"))
	assert.Equal(t, "Estudiante no encontrado", dberr.Wrap(pgx.ErrNoRows, "get_student", "Estudiante").Error())
}
