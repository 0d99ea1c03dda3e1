// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package fold normalizes identifiers typed by people so that visually equal
// input maps to one lookup key.
//
// # Usage
//
// Usernames are folded before they become cache keys and before they reach the
// account lookup, so "MGarcia" and " mgarcia " share a single entry and a
// single row.
package fold

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

/*
Username trims surrounding space, composes to NFC and lower-cases rune by rune.

Description: The mapping mirrors the database's lower() on the username
column, so a folded key names exactly the row the repository returns. Special
casings that change length are not applied: "Straße" stays "straße" rather
than "strasse". Accents are preserved: "José" and "jose" stay distinct.
*/
func Username(s string) string {
	composed := norm.NFC.String(strings.TrimSpace(s))
	return strings.ToLower(composed)
}
