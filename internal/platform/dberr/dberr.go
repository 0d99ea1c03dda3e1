// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/aula/internal/platform/apperr"
)

/*
Wrap classifies a PostgreSQL error as an [apperr.AppError].

Description: Missing rows become NotFound for resource, unique and foreign key
violations become Conflict, and everything else is a PersistenceFailure whose
cause records the failing action. Driver details never reach the client.

Parameters:
  - err: error (nil passes through)
  - action: string (e.g. "create_student")
  - resource: string (user-facing name, e.g. "Estudiante")
*/
func Wrap(err error, action, resource string) error {
	if err == nil {
		return nil
	}

	if apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict(resource + " ya existe")
		case pgerrcode.ForeignKeyViolation:
			return apperr.Conflict(resource + " está referenciado por otros registros")
		}
	}

	return apperr.PersistenceFailure(fmt.Errorf("postgres_%s_failed: %w", action, err))
}
