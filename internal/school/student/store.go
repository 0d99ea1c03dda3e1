// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package student

import "context"

// Repository defines the data access contract for students.
type Repository interface {
	// Count returns the number of students.
	Count(context context.Context) (int, error)

	// List returns students ordered by last name, then first name.
	List(context context.Context, limit, offset int) ([]*Student, error)

	// FindByID returns apperr.NotFound when no student has the ID.
	FindByID(context context.Context, id string) (*Student, error)

	// Create inserts the student and fills its timestamps. A duplicate
	// document returns apperr.Conflict.
	Create(context context.Context, student *Student) error

	// Delete returns apperr.NotFound when no student has the ID.
	Delete(context context.Context, id string) error
}
