// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// # Durable Tier

// BackendStats are the raw counts reported by a durable tier.
type BackendStats struct {
	Total  int64
	Active int64
}

/*
Backend is the durable tier behind a [Store].

Implementations return entries as stored, expired or not; the store decides
visibility. Get returns (nil, nil) when the key is absent.
*/
type Backend interface {
	Get(context context.Context, key string) (*Entry, error)
	Set(context context.Context, entry Entry) error
	Delete(context context.Context, key string) error
	DeleteMatching(context context.Context, pattern string) (int64, error)
	DeleteExpired(context context.Context, now time.Time) (int64, error)
	Clear(context context.Context) error
	Stats(context context.Context, now time.Time) (BackendStats, error)
}

// literalPrefix returns the part of a glob before its first meta character.
// Backends use it to narrow a scan before filtering with the full pattern.
func literalPrefix(pattern string) string {
	if index := strings.IndexAny(pattern, `*?[{\`); index >= 0 {
		return pattern[:index]
	}
	return pattern
}

// # Key Patterns

// keyPathSeparator stands in for '/' so doublestar treats a key as a single
// path segment and '*' matches every character, slashes included.
const keyPathSeparator = "\x1f"

func flattenKey(value string) string {
	return strings.ReplaceAll(value, "/", keyPathSeparator)
}

// validPattern reports whether pattern is a well formed invalidation glob.
func validPattern(pattern string) bool {
	return doublestar.ValidatePattern(flattenKey(pattern))
}

/*
matchKey reports whether key matches an invalidation glob.

Description: Every tier filters with this function, so a pattern removes the
same keys from memory, Redis and Postgres. '*' spans any run of characters,
including '/'.

Parameters:
  - pattern: string (already validated)
  - key: string

Returns:
  - bool
*/
func matchKey(pattern, key string) bool {
	matched, err := doublestar.Match(flattenKey(pattern), flattenKey(key))
	return err == nil && matched
}
