// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Aula.

It provides a rich error type that bridges the gap between low-level storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: One constructor per failure class the core surfaces (credentials,
    session, permission, validation, persistence, rate limiting).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeSessionAbsent      = "SESSION_ABSENT"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// genericFailureMessage is the only text a client ever sees for server-side faults.
const genericFailureMessage = "Ocurrió un error inesperado. Intente nuevamente."

// AppError is the canonical error type for the Aula API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
	// RetryAfter is the number of seconds a rate-limited caller must wait.
	RetryAfter int `json:"retry_after,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Estudiante") // Returns "Estudiante no encontrado"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " no encontrado",
		HTTPStatus: http.StatusNotFound,
	}
}

// InvalidCredentials creates a 401 [AppError] for failed logins.
//
// Unknown users, wrong passwords and inactive accounts must all be reported
// with the same message.
func InvalidCredentials(msg string) *AppError {
	return &AppError{
		Code:       CodeInvalidCredentials,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionAbsent creates a 401 [AppError] for requests that need a session.
func SessionAbsent() *AppError {
	return &AppError{
		Code:       CodeSessionAbsent,
		Message:    "Debe iniciar sesión",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// PermissionDenied creates a 403 [AppError].
//
// The message never names the permission that was missing.
func PermissionDenied() *AppError {
	return &AppError{
		Code:       CodePermissionDenied,
		Message:    "Acceso denegado",
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError] carrying the retry-after hint.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Demasiados intentos. Intente nuevamente en %d segundos.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

// # Server Errors (5xx)

// PersistenceFailure creates a 500 [AppError] for backing-store faults.
// The cause is stored for logging but is never sent to the client.
func PersistenceFailure(cause error) *AppError {
	return &AppError{
		Code:       CodePersistenceFailure,
		Message:    genericFailureMessage,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    genericFailureMessage,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// Translate returns err unchanged when it is already an [*AppError] and wraps
// anything else as a [PersistenceFailure].
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	return PersistenceFailure(err)
}
