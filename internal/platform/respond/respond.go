// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes every Aula API response in one JSON envelope.
//
// # Envelopes
//
//	{"data": ...}                       single resource
//	{"data": [...], "meta": {...}}      paginated list
//	{"error": "...", "code": "..."}     failure; "details" for field errors,
//	                                    "retry_after" when rate limited
//
// Error messages are Spanish and never carry the internal cause.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/pkg/pagination"
)

// SuccessEnvelope wraps a single resource.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PaginatedEnvelope wraps one page of a list.
type PaginatedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error      string              `json:"error"`
	Code       string              `json:"code"`
	Details    []apperr.FieldError `json:"details,omitempty"`
	RetryAfter int                 `json:"retry_after,omitempty"`
}

// # Success

// JSON writes payload with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes 200 with data in a [SuccessEnvelope].
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes 201 with data in a [SuccessEnvelope].
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes 200 with one page of items and its metadata.
func Paginated(writer http.ResponseWriter, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

// NoContent writes 204.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// # Failure

/*
Error renders err as an [ErrorEnvelope].

Description: Errors outside the [apperr] taxonomy reach the client as a
persistence failure. Every 5xx is logged with its cause through the request
logger, which already carries the request ID.

Parameters:
  - writer: http.ResponseWriter
  - request: *http.Request (source of the request logger)
  - err: error
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(apperr.Translate(err))

	if appError.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	if appError.RetryAfter > 0 {
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(appError.RetryAfter))
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:      appError.Message,
		Code:       appError.Code,
		Details:    appError.Details,
		RetryAfter: appError.RetryAfter,
	})
}
