// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements staff authentication and session management.

It verifies credentials against the account store, keeps a server-side record
of active sessions in the shared cache, and answers permission questions for
the session bound to a request.

Architecture:

  - Service: Orchestrates login, logout, password change and session checks.
  - Cache: Cache-aside access to accounts, role permissions, active sessions
    and login attempts.
  - Repository: Account persistence over PostgreSQL.
  - Handler: JSON endpoints under /api/v1/auth.

Failed logins always report the same message, whether the account is unknown,
inactive or the password is wrong.
*/
package auth

import (
	"time"

	"github.com/taibuivan/aula/internal/platform/sec"
)

// # Domain Entities

// User is a staff account as stored. It carries the password hash and must
// never be written to an HTTP response; use [User.Profile] instead.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	LastAccessAt *time.Time   `json:"last_access_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Profile is the public view of a [User].
type Profile struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	LastAccessAt *time.Time   `json:"last_access_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Profile strips credentials from the account.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Role:         u.Role,
		LastAccessAt: u.LastAccessAt,
		CreatedAt:    u.CreatedAt,
	}
}

// displayName falls back to the username for accounts without one.
func (u *User) displayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// LoginAttempt is one entry of the per-IP login history.
type LoginAttempt struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// # Field Identifiers

// Field names for validation and response payloads in the authentication domain.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldPermissions     = "permissions"
	FieldMessage         = "message"
)

// # Messages

const (
	// msgInvalidCredentials is shared by every login failure.
	msgInvalidCredentials = "Usuario o contraseña incorrectos"

	// msgWrongCurrentPassword is returned when a password change fails verification.
	msgWrongCurrentPassword = "La contraseña actual es incorrecta"
)

// minPasswordLength applies to new passwords.
const minPasswordLength = 8
