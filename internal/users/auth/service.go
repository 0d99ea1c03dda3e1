// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/ratelimit"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
	"github.com/taibuivan/aula/internal/platform/validate"
	"github.com/taibuivan/aula/pkg/uuid"
)

// # Service

// Service implements staff authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential checks,
// session handling or error messages must keep failed logins indistinguishable.
type Service struct {
	userRepository UserRepository
	authCache      *Cache
	hasher         PasswordHasher
	tokenProvider  TokenProvider
	limiter        *ratelimit.Limiter
	evaluator      *sec.Evaluator
	clock          clock.Clock
	logger         *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	authCache *Cache,
	hasher PasswordHasher,
	tokenProv TokenProvider,
	limiter *ratelimit.Limiter,
	evaluator *sec.Evaluator,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		userRepository: userRepo,
		authCache:      authCache,
		hasher:         hasher,
		tokenProvider:  tokenProv,
		limiter:        limiter,
		evaluator:      evaluator,
		clock:          clk,
		logger:         logger,
	}
}

// # Authentication Flow

/*
Authenticate checks a username and password.

Description: Unknown accounts, inactive accounts and wrong passwords all
return the same InvalidCredentials error so callers cannot probe for valid
usernames.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *Profile: Public view of the account
  - error: InvalidCredentials or PersistenceFailure
*/
func (service *Service) Authenticate(context context.Context, username, password string) (*Profile, error) {
	user, err := service.authenticate(context, username, password)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// authenticate is [Service.Authenticate] returning the full account.
func (service *Service) authenticate(context context.Context, username, password string) (*User, error) {
	user, err := service.authCache.GetUserByUsername(context, username)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	if user == nil || !user.IsActive {
		return nil, apperr.InvalidCredentials(msgInvalidCredentials)
	}

	matched, err := service.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// A corrupt stored hash is a server fault, but the caller still sees a failed login.
		service.logger.ErrorContext(context, "password_hash_unreadable",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return nil, apperr.InvalidCredentials(msgInvalidCredentials)
	}

	if !matched {
		return nil, apperr.InvalidCredentials(msgInvalidCredentials)
	}

	return user, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

// LoginResult is a successfully established session.
type LoginResult struct {
	AccessToken string
	ExpiresIn   time.Duration
	Profile     *Profile
}

/*
Login authenticates and binds the account to the request's session store.

Description: Input is validated before any side effect. The attempt is then
counted against the (ip, "login") window, credentials are checked and the
outcome recorded in the IP's history. On success the session is established,
recorded as the user's active session and an access token is issued. Last
access and password rehashing are best effort.

Parameters:
  - context: context.Context
  - store: *session.Store (the caller's session)
  - input: LoginInput

Returns:
  - *LoginResult: Access token and profile
  - error: ValidationError, RateLimited, InvalidCredentials or PersistenceFailure
*/
func (service *Service) Login(context context.Context, store *session.Store, input LoginInput) (*LoginResult, error) {

	// 1. Validate before touching any state
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	ip := input.IPAddress
	if ip == "" {
		ip = "unknown"
	}

	// 2. Sliding-window throttle per IP
	verdict, err := service.limiter.Check(context, ip, constants.ActionLogin)
	if err != nil {
		return nil, apperr.PersistenceFailure(err)
	}
	if !verdict.Allowed {
		service.logger.WarnContext(context, "login_rate_limited",
			slog.String("ip", ip),
			slog.Int("attempts", verdict.Attempts),
		)
		return nil, apperr.RateLimited(verdict.RetryAfterSeconds())
	}

	// 3. Credential check
	store.Begin()
	user, err := service.authenticate(context, input.Username, input.Password)
	service.recordAttempt(context, ip, err == nil)
	if err != nil {
		store.Abort()
		return nil, err
	}

	// 4. Bind the session
	data := session.Session{
		ID:          uuid.New(),
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.displayName(),
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   service.clock.Now(),
	}

	if err := store.Establish(data); err != nil {
		store.Abort()
		return nil, apperr.Internal(err)
	}

	if err := service.authCache.SetActiveSession(context, data); err != nil {
		store.Reset()
		return nil, apperr.PersistenceFailure(err)
	}

	// 5. Issue the access token
	accessToken, err := service.tokenProvider.GenerateAccessToken(data.ID, user.ID, user.Username, string(user.Role), constants.AccessTokenTTL)
	if err != nil {
		_ = service.authCache.RemoveActiveSession(context, user.ID)
		store.Reset()
		return nil, apperr.Internal(err)
	}

	// 6. Best-effort bookkeeping
	if err := service.UpdateLastAccess(context, user.ID); err != nil {
		service.logger.WarnContext(context, "last_access_update_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
	service.upgradeHash(context, user, input.Password)

	if err := service.limiter.Reset(context, ip, constants.ActionLogin); err != nil {
		service.logger.WarnContext(context, "login_window_reset_failed", slog.Any("error", err))
	}

	service.logger.InfoContext(context, "login_succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		AccessToken: accessToken,
		ExpiresIn:   constants.AccessTokenTTL,
		Profile:     user.Profile(),
	}, nil
}

// recordAttempt appends to the IP's history; failures are only logged.
func (service *Service) recordAttempt(context context.Context, ip string, success bool) {
	if err := service.authCache.RecordLoginAttempt(context, ip, success); err != nil {
		service.logger.WarnContext(context, "login_attempt_record_failed", slog.Any("error", err))
	}
}

// upgradeHash rehashes legacy or weaker hashes with the current parameters.
func (service *Service) upgradeHash(context context.Context, user *User, password string) {
	if !service.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}

	hash, err := service.hasher.Hash(password)
	if err == nil {
		err = service.userRepository.UpdatePassword(context, user.ID, hash)
	}
	if err == nil {
		err = service.authCache.InvalidateUserCache(context, user.ID, user.Username)
	}

	if err != nil {
		service.logger.WarnContext(context, "password_rehash_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}

	service.logger.InfoContext(context, "password_rehashed", slog.String("user_id", user.ID))
}

/*
UpdateLastAccess stamps the account's last login time.

Description: The cached account is dropped so the next read sees the new
timestamp.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) UpdateLastAccess(context context.Context, userID string) error {
	if err := service.userRepository.UpdateLastAccess(context, userID, service.clock.Now()); err != nil {
		return apperr.PersistenceFailure(err)
	}

	if err := service.authCache.InvalidateUserCache(context, userID, ""); err != nil {
		return apperr.PersistenceFailure(err)
	}

	return nil
}

/*
Logout ends the session bound to store.

Description: The store is cleared first, then the server-side active session
is removed. Logging out an anonymous store succeeds.

Parameters:
  - context: context.Context
  - store: *session.Store

Returns:
  - error: PersistenceFailure when the active session could not be removed
*/
func (service *Service) Logout(context context.Context, store *session.Store) error {
	current, ok := store.Current()
	store.Destroy()

	if !ok {
		return nil
	}

	if err := service.authCache.RemoveActiveSession(context, current.UserID); err != nil {
		return apperr.PersistenceFailure(err)
	}

	service.logger.InfoContext(context, "logout_succeeded", slog.String("user_id", current.UserID))
	return nil
}

// # Session Queries

// VerifySession returns the profile of the session bound to store.
func (service *Service) VerifySession(store *session.Store) (*Profile, bool) {
	current, ok := store.Current()
	if !ok {
		return nil, false
	}

	return &Profile{
		ID:          current.UserID,
		Username:    current.Username,
		Email:       current.Email,
		DisplayName: current.DisplayName,
		Role:        current.Role,
		CreatedAt:   current.CreatedAt,
	}, true
}

// HasPermission checks permission against the role of the session bound to
// store. An absent session has no permissions.
func (service *Service) HasPermission(store *session.Store, permission sec.Permission) bool {
	if !store.IsAuthenticated() {
		return false
	}
	return service.evaluator.HasPermission(store.Role(), permission)
}

// Permissions lists the permissions of the session's role.
func (service *Service) Permissions(context context.Context, store *session.Store) ([]sec.Permission, error) {
	if !store.IsAuthenticated() {
		return nil, apperr.SessionAbsent()
	}

	perms, err := service.authCache.GetPermissionsByRole(context, store.Role())
	if err != nil {
		return nil, apperr.PersistenceFailure(err)
	}
	return perms, nil
}

/*
ResolveSession returns the active session recorded for userID.

Description: Used by the authentication middleware to tie a bearer token to
a live server-side session.

Returns:
  - *session.Session: the active session, or nil after logout or expiry
  - error: PersistenceFailure
*/
func (service *Service) ResolveSession(context context.Context, userID string) (*session.Session, error) {
	current, err := service.authCache.GetActiveSession(context, userID)
	if err != nil {
		return nil, apperr.PersistenceFailure(err)
	}
	return current, nil
}

// GetUserByID returns the public profile of an account.
func (service *Service) GetUserByID(context context.Context, id string) (*Profile, error) {
	user, err := service.authCache.GetUserByID(context, id)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if user == nil {
		return nil, apperr.NotFound("Usuario")
	}
	return user.Profile(), nil
}

// # Credentials

/*
ChangePassword replaces the password of an account after verifying the current one.

Description: A wrong current password leaves the account untouched. On success
the cached account is invalidated so the next login verifies the new hash.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: ValidationError, NotFound, InvalidCredentials or PersistenceFailure
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, currentPassword).
		Required(FieldNewPassword, newPassword).
		MinLen(FieldNewPassword, newPassword, minPasswordLength)

	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.authCache.GetUserByID(context, userID)
	if err != nil {
		return apperr.Translate(err)
	}
	if user == nil {
		return apperr.NotFound("Usuario")
	}

	matched, err := service.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil || !matched {
		return apperr.InvalidCredentials(msgWrongCurrentPassword)
	}

	hash, err := service.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hash); err != nil {
		return apperr.Translate(err)
	}

	if err := service.authCache.InvalidateUserCache(context, user.ID, user.Username); err != nil {
		return apperr.PersistenceFailure(err)
	}

	service.logger.InfoContext(context, "password_changed", slog.String("user_id", userID))
	return nil
}
