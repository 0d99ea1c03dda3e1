// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the primary keys of the platform.

Keys are UUID version 7 values: time-ordered at millisecond precision, so new
rows append to the end of PostgreSQL B-tree indexes, and stored in native
'uuid' columns.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics when the system entropy source fails, which leaves the process
// unable to mint keys at all.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
