// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aula/internal/platform/apperr"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
	"github.com/taibuivan/aula/internal/platform/session"
	"github.com/taibuivan/aula/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Session returns the request's session store. It is never nil.
*/
func Session(request *http.Request) *session.Store {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredSession ensures the request carries an established session.

Returns:
  - session.Session: The active session
  - error: apperr.SessionAbsent if the request is anonymous, logged out or expired
*/
func RequiredSession(request *http.Request) (session.Session, error) {
	current, ok := Session(request).Current()
	if !ok {
		return session.Session{}, apperr.SessionAbsent()
	}
	return current, nil
}
