// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SchoolStudentTable represents the 'school.student' table
type SchoolStudentTable struct {
	Table     string
	ID        string
	Document  string
	FirstName string
	LastName  string
	BirthDate string
	Course    string
	CreatedAt string
	UpdatedAt string
}

// SchoolStudent is the schema definition for school.student
var SchoolStudent = SchoolStudentTable{
	Table:     "school.student",
	ID:        "id",
	Document:  "document",
	FirstName: "firstname",
	LastName:  "lastname",
	BirthDate: "birthdate",
	Course:    "course",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns all standard column names
func (t SchoolStudentTable) Columns() []string {
	return []string{
		t.ID, t.Document, t.FirstName, t.LastName,
		t.BirthDate, t.Course, t.CreatedAt, t.UpdatedAt,
	}
}
