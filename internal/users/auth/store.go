// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for staff accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account whose username folds to the given value.

		Parameters:
		  - context: context.Context
		  - username: string (already folded)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		UpdateLastAccess stamps the account's last successful login.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastAccess(context context.Context, userID string, at time.Time) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Security Collaborators

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Verify(plainTextPassword, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) bool
}

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user,
	// bound to sessionID.
	GenerateAccessToken(sessionID, userID, username, role string, timeToLive time.Duration) (string, error)
}
