// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "sort"

// # Permission Catalog

// Permission is a capability string of the form "<action>_<entity>".
//
// The naming convention is a contract: route guards and entity services build
// permission strings with [Evaluator.CanAccess] and friends instead of
// spelling them out.
type Permission string

// Wildcard is the permission granted to [RoleAdmin]. It matches every check.
const Wildcard Permission = "*"

// Actions used to derive permission strings.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Entities guarded by the catalog.
const (
	EntityStudents  = "estudiantes"
	EntityTeachers  = "profesores"
	EntityCourses   = "cursos"
	EntityGrades    = "notas"
	EntityIncidents = "llamados"
	EntityUsers     = "usuarios"
	EntityReports   = "reportes"
)

// PermissionFor builds the permission string for an action on an entity.
func PermissionFor(action, entity string) Permission {
	return Permission(action + "_" + entity)
}

// permissionSet is an immutable membership table for one role.
type permissionSet map[Permission]struct{}

func newPermissionSet(perms ...Permission) permissionSet {
	set := make(permissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// defaultCatalog is the static role table. Adding a role is a change here,
// never a new branch in the evaluator.
var defaultCatalog = map[UserRole]permissionSet{
	RoleAdmin: newPermissionSet(Wildcard),

	RoleDirector: newPermissionSet(
		PermissionFor(ActionView, EntityStudents),
		PermissionFor(ActionCreate, EntityStudents),
		PermissionFor(ActionEdit, EntityStudents),
		PermissionFor(ActionView, EntityTeachers),
		PermissionFor(ActionCreate, EntityTeachers),
		PermissionFor(ActionEdit, EntityTeachers),
		PermissionFor(ActionView, EntityCourses),
		PermissionFor(ActionCreate, EntityCourses),
		PermissionFor(ActionEdit, EntityCourses),
		PermissionFor(ActionView, EntityGrades),
		PermissionFor(ActionView, EntityIncidents),
		PermissionFor(ActionCreate, EntityIncidents),
		PermissionFor(ActionEdit, EntityIncidents),
		PermissionFor(ActionDelete, EntityIncidents),
		PermissionFor(ActionView, EntityUsers),
		PermissionFor(ActionView, EntityReports),
	),

	RoleSecretary: newPermissionSet(
		PermissionFor(ActionView, EntityStudents),
		PermissionFor(ActionCreate, EntityStudents),
		PermissionFor(ActionEdit, EntityStudents),
		PermissionFor(ActionView, EntityTeachers),
		PermissionFor(ActionView, EntityCourses),
		PermissionFor(ActionView, EntityIncidents),
		PermissionFor(ActionView, EntityReports),
	),

	RoleTeacher: newPermissionSet(
		PermissionFor(ActionView, EntityStudents),
		PermissionFor(ActionView, EntityCourses),
		PermissionFor(ActionView, EntityGrades),
		PermissionFor(ActionCreate, EntityGrades),
		PermissionFor(ActionEdit, EntityGrades),
		PermissionFor(ActionView, EntityIncidents),
		PermissionFor(ActionCreate, EntityIncidents),
	),
}

// # Permission Evaluation

// Evaluator answers permission questions for a role. It performs no I/O and
// holds no per-request state.
type Evaluator struct {
	catalog map[UserRole]permissionSet
}

// NewEvaluator returns an [Evaluator] over the built-in role table.
func NewEvaluator() *Evaluator {
	return &Evaluator{catalog: defaultCatalog}
}

// HasPermission reports whether role grants permission.
//
//   - admin: always true.
//   - known role: membership in its set.
//   - unknown or empty role: always false.
func (e *Evaluator) HasPermission(role UserRole, permission Permission) bool {
	set, ok := e.catalog[role]
	if !ok {
		return false
	}

	if _, wildcard := set[Wildcard]; wildcard {
		return true
	}

	_, granted := set[permission]
	return granted
}

// HasAny reports whether role grants at least one of the permissions.
func (e *Evaluator) HasAny(role UserRole, permissions ...Permission) bool {
	for _, p := range permissions {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether role grants every one of the permissions.
// An empty list is granted only to known roles.
func (e *Evaluator) HasAll(role UserRole, permissions ...Permission) bool {
	if _, ok := e.catalog[role]; !ok {
		return false
	}
	for _, p := range permissions {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// CanAccess checks "<action>_<entity>". The action defaults to "view".
func (e *Evaluator) CanAccess(role UserRole, entity string, action ...string) bool {
	verb := ActionView
	if len(action) > 0 && action[0] != "" {
		verb = action[0]
	}
	return e.HasPermission(role, PermissionFor(verb, entity))
}

// CanCreate checks "create_<entity>".
func (e *Evaluator) CanCreate(role UserRole, entity string) bool {
	return e.CanAccess(role, entity, ActionCreate)
}

// CanModify checks "edit_<entity>".
func (e *Evaluator) CanModify(role UserRole, entity string) bool {
	return e.CanAccess(role, entity, ActionEdit)
}

// CanDelete checks "delete_<entity>".
func (e *Evaluator) CanDelete(role UserRole, entity string) bool {
	return e.CanAccess(role, entity, ActionDelete)
}

// AllPermissionsFor lists the permissions of role in sorted order.
// Admin yields only [Wildcard]; unknown roles yield an empty slice.
func (e *Evaluator) AllPermissionsFor(role UserRole) []Permission {
	set, ok := e.catalog[role]
	if !ok {
		return []Permission{}
	}

	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}
