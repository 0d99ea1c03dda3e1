// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// School leadership: reads everything, manages people and records
	RoleDirector UserRole = "director"

	// Front office: enrollment and student records
	RoleSecretary UserRole = "secretaria"

	// Classroom staff: grades and disciplinary records for their students
	RoleTeacher UserRole = "profesor"
)

// Roles lists every known role in descending hierarchy order.
var Roles = []UserRole{RoleAdmin, RoleDirector, RoleSecretary, RoleTeacher}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.Valid() && r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleDirector:
		return 30
	case RoleSecretary:
		return 20
	case RoleTeacher:
		return 10
	default:
		return 0
	}
}
