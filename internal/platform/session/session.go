// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session holds the authenticated identity of one request.

A [Store] is created per request by the authentication middleware and passed
explicitly to whatever needs identity. Nothing in the platform reads identity
from package-level state.

Lifecycle:

	Anonymous -> Authenticating -> Authenticated -> LoggedOut | Expired

A session either exists with every field populated or does not exist at all.
*/
package session

import (
	"errors"
	"time"

	"github.com/taibuivan/aula/internal/platform/sec"
)

// ErrIncomplete is returned when establishing a session with missing fields.
var ErrIncomplete = errors.New("session: incomplete session data")

// # Session Data

// Session is the identity attached to a logged-in request.
//
// ID is unique per login and travels in the access token as its jti, so a
// token only ever unlocks the session it was issued with.
type Session struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Email       string       `json:"email"`
	Role        sec.UserRole `json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Complete reports whether every field is populated.
func (s Session) Complete() bool {
	return s.ID != "" &&
		s.UserID != "" &&
		s.Username != "" &&
		s.DisplayName != "" &&
		s.Email != "" &&
		s.Role != "" &&
		!s.CreatedAt.IsZero()
}

// # Lifecycle States

// State is the position of a [Store] in the authentication lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateLoggedOut
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateLoggedOut:
		return "logged_out"
	case StateExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// # Store

// Store owns the session of a single request. It is not safe for concurrent use.
type Store struct {
	current *Session
	state   State
}

// NewStore returns an anonymous [Store].
func NewStore() *Store {
	return &Store{state: StateAnonymous}
}

// Begin marks the start of a credential check.
func (s *Store) Begin() {
	s.current = nil
	s.state = StateAuthenticating
}

// Abort returns an authenticating store to anonymous after a failed check.
func (s *Store) Abort() {
	if s.state == StateAuthenticating {
		s.state = StateAnonymous
	}
}

// Reset drops any session and returns the store to anonymous.
func (s *Store) Reset() {
	s.current = nil
	s.state = StateAnonymous
}

// Establish attaches a complete session. Partial data is rejected and leaves
// the store unchanged.
func (s *Store) Establish(session Session) error {
	if !session.Complete() {
		return ErrIncomplete
	}
	s.current = &session
	s.state = StateAuthenticated
	return nil
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	if s == nil || s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Role returns the role of the active session, or "" when anonymous.
func (s *Store) Role() sec.UserRole {
	if current, ok := s.Current(); ok {
		return current.Role
	}
	return ""
}

// IsAuthenticated reports whether a session is attached.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// State returns the lifecycle position of the store.
func (s *Store) State() State {
	if s == nil {
		return StateAnonymous
	}
	return s.state
}

// Destroy drops the session after a logout.
func (s *Store) Destroy() {
	s.current = nil
	s.state = StateLoggedOut
}

// Expire drops the session because the server no longer recognizes it.
func (s *Store) Expire() {
	s.current = nil
	s.state = StateExpired
}
