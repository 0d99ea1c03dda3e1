// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CacheEntryTable represents the 'cache_entries' table
type CacheEntryTable struct {
	Table     string
	Key       string
	Value     string
	ExpiresAt string
	CreatedAt string
}

// CacheEntry is the schema definition for cache_entries
var CacheEntry = CacheEntryTable{
	Table:     "cache_entries",
	Key:       "key",
	Value:     "value",
	ExpiresAt: "expiresat",
	CreatedAt: "createdat",
}
