// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/aula/internal/platform/database/schema"
	"github.com/taibuivan/aula/internal/platform/dberr"
)

var (
	table   = schema.SchoolStudent
	columns = strings.Join(table.Columns(), ", ")
)

// PostgresRepository implements [Repository] over school.student.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a repository over an existing pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Count returns the number of students on record.

Parameters:
  - context: context.Context

Returns:
  - int: Total rows in school.student
  - error: apperr.PersistenceFailure on database errors
*/
func (repository *PostgresRepository) Count(context context.Context) (int, error) {
	var total int
	err := repository.db.QueryRow(context, `SELECT count(*) FROM `+table.Table).Scan(&total)
	return total, dberr.Wrap(err, "count_students", resourceName)
}

/*
List returns one page of students ordered by last name, first name and ID.

Description: The ID tiebreak keeps pages stable when names repeat.

Parameters:
  - context: context.Context
  - limit: int (page size)
  - offset: int (rows to skip)

Returns:
  - []*Student: Hydrated page, empty past the last row
  - error: apperr.PersistenceFailure on query or scan errors
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Student, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s ASC, %s ASC, %s ASC
		LIMIT $1 OFFSET $2
	`,
		columns, table.Table, table.LastName, table.FirstName, table.ID,
	)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "list_students", resourceName)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_students", resourceName)
	}

	return students, nil
}

/*
FindByID retrieves a single student.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Student: Hydrated student entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, columns, table.Table, table.ID)

	student, err := scanStudent(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_student", resourceName)
	}
	return student, nil
}

/*
Create inserts a student and stamps its timestamps from the database clock.

Parameters:
  - context: context.Context
  - s: *Student (ID already assigned; CreatedAt and UpdatedAt are filled in)

Returns:
  - error: apperr.Conflict on a duplicate document, or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, s *Student) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s, %s
	`,
		table.Table, table.ID, table.Document, table.FirstName, table.LastName,
		table.BirthDate, table.Course, table.CreatedAt, table.UpdatedAt,
		table.CreatedAt, table.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		s.ID, s.Document, s.FirstName, s.LastName, s.BirthDate, s.Course,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	return dberr.Wrap(err, "create_student", resourceName)
}

/*
Delete removes a student permanently.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: apperr.NotFound when no row matched, or database errors
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_student", resourceName)
	}

	if cmd.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "delete_student", resourceName)
	}
	return nil
}

// scanStudent hydrates a [Student] in [schema.SchoolStudentTable.Columns] order.
func scanStudent(row pgx.Row) (*Student, error) {
	s := &Student{}
	err := row.Scan(
		&s.ID, &s.Document, &s.FirstName, &s.LastName,
		&s.BirthDate, &s.Course, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
