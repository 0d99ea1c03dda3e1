// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/platform/session"
)

func completeSession() session.Session {
	return session.Session{
		ID:          "s-1",
		UserID:      "u-1",
		Username:    "mgarcia",
		DisplayName: "María García",
		Email:       "mgarcia@colegio.edu",
		Role:        sec.RoleTeacher,
		CreatedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

/*
TestStore_Lifecycle walks a store through login and logout.
*/
func TestStore_Lifecycle(t *testing.T) {
	store := session.NewStore()
	assert.Equal(t, session.StateAnonymous, store.State())
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, sec.UserRole(""), store.Role())

	store.Begin()
	assert.Equal(t, session.StateAuthenticating, store.State())

	require.NoError(t, store.Establish(completeSession()))
	assert.Equal(t, session.StateAuthenticated, store.State())
	assert.Equal(t, sec.RoleTeacher, store.Role())

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "mgarcia", current.Username)

	store.Destroy()
	assert.Equal(t, session.StateLoggedOut, store.State())
	assert.False(t, store.IsAuthenticated())
}

/*
TestStore_RejectsPartialSession checks that incomplete data never becomes a session.
*/
func TestStore_RejectsPartialSession(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*session.Session)
	}{
		{"missing_user_id", func(s *session.Session) { s.UserID = "" }},
		{"missing_email", func(s *session.Session) { s.Email = "" }},
		{"missing_role", func(s *session.Session) { s.Role = "" }},
		{"missing_created_at", func(s *session.Session) { s.CreatedAt = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore()
			data := completeSession()
			tt.mutate(&data)

			err := store.Establish(data)
			assert.ErrorIs(t, err, session.ErrIncomplete)
			assert.False(t, store.IsAuthenticated())
		})
	}
}

/*
TestStore_AbortAndExpire covers the failure transitions.
*/
func TestStore_AbortAndExpire(t *testing.T) {
	store := session.NewStore()
	store.Begin()
	store.Abort()
	assert.Equal(t, session.StateAnonymous, store.State())

	require.NoError(t, store.Establish(completeSession()))
	store.Expire()
	assert.Equal(t, session.StateExpired, store.State())
	assert.False(t, store.IsAuthenticated())

	store.Reset()
	assert.Equal(t, session.StateAnonymous, store.State())

	var nilStore *session.Store
	assert.False(t, nilStore.IsAuthenticated())
	assert.Equal(t, session.StateAnonymous, nilStore.State())
}
