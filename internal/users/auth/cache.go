// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/cache"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
	"github.com/taibuivan/aula/pkg/fold"
)

// # Auth Cache

// Cache memoizes identity data on top of the shared cache store.
//
// TTLs: accounts and active sessions live 1800s, role permissions and
// login-attempt histories 3600s.
type Cache struct {
	store       *cache.Store
	users       UserRepository
	evaluator   *sec.Evaluator
	accounts    cache.Typed[User]
	permissions cache.Typed[[]sec.Permission]
	sessions    cache.Typed[session.Session]
	attempts    cache.Typed[[]LoginAttempt]
}

// NewCache builds the identity cache over store.
func NewCache(store *cache.Store, users UserRepository, evaluator *sec.Evaluator) *Cache {
	return &Cache{
		store:       store,
		users:       users,
		evaluator:   evaluator,
		accounts:    cache.For[User](store),
		permissions: cache.For[[]sec.Permission](store),
		sessions:    cache.For[session.Session](store),
		attempts:    cache.For[[]LoginAttempt](store),
	}
}

// # Keys

func userIDKey(id string) string {
	return constants.CacheKeyUserByID + id
}

func usernameKey(username string) string {
	return constants.CacheKeyUserByUsername + fold.Username(username)
}

func rolePermissionsKey(role sec.UserRole) string {
	return constants.CacheKeyRolePerms + string(role)
}

func activeSessionKey(userID string) string {
	return constants.CacheKeyActiveSession + userID
}

func loginAttemptsKey(ip string) string {
	return constants.CacheKeyLoginAttempts + ip
}

// # Accounts

/*
GetUserByID returns the account with the given ID, loading it on a miss.

Returns:
  - *User: the account, or nil when it does not exist (not cached)
  - error: cache or repository failures
*/
func (c *Cache) GetUserByID(ctx context.Context, id string) (*User, error) {
	return c.accounts.Remember(ctx, userIDKey(id), constants.UserCacheTTL, func(ctx context.Context) (*User, error) {
		return absentOnNotFound(c.users.FindByID(ctx, id))
	})
}

// GetUserByUsername is [Cache.GetUserByID] keyed by the folded username.
func (c *Cache) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	folded := fold.Username(username)
	return c.accounts.Remember(ctx, usernameKey(folded), constants.UserCacheTTL, func(ctx context.Context) (*User, error) {
		return absentOnNotFound(c.users.FindByUsername(ctx, folded))
	})
}

// InvalidateUserCache drops both key variants of an account. The username is optional.
func (c *Cache) InvalidateUserCache(ctx context.Context, id, username string) error {
	if err := c.store.Delete(ctx, userIDKey(id)); err != nil {
		return err
	}

	if username != "" {
		if err := c.store.Delete(ctx, usernameKey(username)); err != nil {
			return err
		}
	}

	return nil
}

// absentOnNotFound turns a repository NotFound into a cache miss that is not stored.
func absentOnNotFound(user *User, err error) (*User, error) {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, nil
	}
	return user, err
}

// # Role Permissions

// GetPermissionsByRole returns the sorted permission list of role.
func (c *Cache) GetPermissionsByRole(ctx context.Context, role sec.UserRole) ([]sec.Permission, error) {
	perms, err := c.permissions.Remember(ctx, rolePermissionsKey(role), constants.PermissionCacheTTL, func(context.Context) (*[]sec.Permission, error) {
		all := c.evaluator.AllPermissionsFor(role)
		return &all, nil
	})
	if err != nil {
		return nil, err
	}
	return *perms, nil
}

// # Active Sessions

// GetActiveSession returns the server-side session of a user, or nil when none is active.
func (c *Cache) GetActiveSession(ctx context.Context, userID string) (*session.Session, error) {
	current, found, err := c.sessions.Get(ctx, activeSessionKey(userID))
	if err != nil || !found {
		return nil, err
	}
	return current, nil
}

// SetActiveSession records data as the active session of its user.
func (c *Cache) SetActiveSession(ctx context.Context, data session.Session) error {
	return c.sessions.Set(ctx, activeSessionKey(data.UserID), data, constants.UserCacheTTL)
}

// RemoveActiveSession forgets the active session of a user.
func (c *Cache) RemoveActiveSession(ctx context.Context, userID string) error {
	return c.sessions.Delete(ctx, activeSessionKey(userID))
}

// # Login Attempts

/*
RecordLoginAttempt appends an attempt to the IP's history, keeping the newest ten.

Description: Read-modify-write without locking; concurrent attempts from the
same IP may overwrite each other. The history is for reporting only and never
gates a login.
*/
func (c *Cache) RecordLoginAttempt(ctx context.Context, ip string, success bool) error {
	history, err := c.LoginAttempts(ctx, ip)
	if err != nil {
		return err
	}

	history = append(history, LoginAttempt{Timestamp: c.store.Now(), Success: success})
	if overflow := len(history) - constants.LoginAttemptHistory; overflow > 0 {
		history = history[overflow:]
	}

	return c.attempts.Set(ctx, loginAttemptsKey(ip), history, constants.PermissionCacheTTL)
}

// LoginAttempts returns the IP's history, oldest first.
func (c *Cache) LoginAttempts(ctx context.Context, ip string) ([]LoginAttempt, error) {
	history, found, err := c.attempts.Get(ctx, loginAttemptsKey(ip))
	if err != nil || !found {
		return nil, err
	}
	return *history, nil
}

// # Maintenance

// authCachePatterns covers every key family owned by [Cache].
var authCachePatterns = []string{"user:*", "permissions:*", "session:*", "login_attempts:*"}

// ClearAuthCache drops every identity-related entry. All patterns are
// attempted even when one fails.
func (c *Cache) ClearAuthCache(ctx context.Context) error {
	var errs []error
	for _, pattern := range authCachePatterns {
		if _, err := c.store.InvalidatePattern(ctx, pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}
