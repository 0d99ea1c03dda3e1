// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns the repositories query.
//
// Column names are lower-case without separators, matching the migrations
// under data/migrations.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Password     string
	DisplayName  string
	Role         string
	IsActive     string
	LastAccessAt string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Password:     "passwordhash",
	DisplayName:  "displayname",
	Role:         "role",
	IsActive:     "isactive",
	LastAccessAt: "lastaccessat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns the projection used by account lookups.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Password, t.DisplayName,
		t.Role, t.IsActive, t.LastAccessAt, t.CreatedAt, t.UpdatedAt,
	}
}
