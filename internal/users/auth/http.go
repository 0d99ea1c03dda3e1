// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aula/internal/platform/middleware"
	requestutil "github.com/taibuivan/aula/internal/platform/request"
	"github.com/taibuivan/aula/internal/platform/respond"
	"github.com/taibuivan/aula/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login           : Authenticates and returns a JWT.
//   - POST /logout          : Ends the active session.
//   - GET  /me              : Current profile and permissions.
//   - POST /change-password : Replaces the password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Login authenticates a staff member and establishes a session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: Access token and profile
  - 400: Validation failure
  - 401: Invalid credentials (same message for every cause)
  - 429: Too many attempts from this IP, with Retry-After
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.authService.Login(request.Context(), requestutil.Session(request), LoginInput{
		Username:  input.Username,
		Password:  input.Password,
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldAccessToken: result.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(result.ExpiresIn / time.Second),
		FieldUser:        result.Profile,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Response:
  - 204: Session terminated
  - 401: No active session
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.authService.Logout(request.Context(), requestutil.Session(request)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Me returns the profile and permissions of the current session.

GET /api/v1/auth/me

Response:
  - 200: Profile and permission list
  - 401: No active session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	store := requestutil.Session(request)

	profile, _ := handler.authService.VerifySession(store)
	permissions, err := handler.authService.Permissions(request.Context(), store)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldUser:        profile,
		FieldPermissions: permissions,
	})
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Password changed
  - 400: Validation failure
  - 401: Current password is wrong or no active session
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	current, err := requestutil.RequiredSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		current.UserID,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Contraseña actualizada",
	})
}
