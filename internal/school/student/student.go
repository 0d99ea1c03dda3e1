// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package student manages the school's student registry.

Listings and single lookups are memoized in the shared cache under the
'estudiantes:' key family. Every write drops the whole family, so readers
never see a page that predates a create or delete.
*/
package student

import "time"

// Student is one enrolled student.
type Student struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
	Course    string    `json:"course"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the fields of a new student as submitted.
type CreateInput struct {
	Document  string `json:"document"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Course    string `json:"course"`
}

// Global field names for validation
const (
	FieldID        = "id"
	FieldDocument  = "document"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldBirthDate = "birth_date"
	FieldCourse    = "course"
)

// resourceName is the user-facing name in NotFound and Conflict messages.
const resourceName = "Estudiante"
