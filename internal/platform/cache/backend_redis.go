// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 256

// # Redis Backend

// RedisBackend stores entries as JSON documents under a key prefix with a
// native Redis TTL. The TTL only reclaims memory; visibility is still decided
// by the entry's ExpiresAt.
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a durable tier under the given namespace prefix.
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Get loads one entry.
func (repository *RedisBackend) Get(context context.Context, key string) (*Entry, error) {
	raw, err := repository.client.Get(context, repository.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_cache_get_failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("redis_cache_decode_failed: %w", err)
	}

	return &entry, nil
}

// Set writes one entry with a TTL matching its ExpiresAt.
func (repository *RedisBackend) Set(context context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis_cache_encode_failed: %w", err)
	}

	ttl := entry.ExpiresAt.Sub(entry.CreatedAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	if err := repository.client.Set(context, repository.prefix+entry.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_cache_set_failed: %w", err)
	}

	return nil
}

// Delete removes one entry if present.
func (repository *RedisBackend) Delete(context context.Context, key string) error {
	if err := repository.client.Del(context, repository.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis_cache_delete_failed: %w", err)
	}

	return nil
}

// DeleteMatching scans the literal prefix of the glob and removes keys the
// full glob accepts.
func (repository *RedisBackend) DeleteMatching(context context.Context, pattern string) (int64, error) {
	keys, err := repository.scan(context, literalPrefix(pattern))
	if err != nil {
		return 0, err
	}

	matched := make([]string, 0, len(keys))
	for _, key := range keys {
		if matchKey(pattern, strings.TrimPrefix(key, repository.prefix)) {
			matched = append(matched, key)
		}
	}

	return repository.del(context, matched)
}

// DeleteExpired removes entries whose ExpiresAt has passed but whose native
// TTL has not fired yet.
func (repository *RedisBackend) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	entries, err := repository.load(context)
	if err != nil {
		return 0, err
	}

	expired := make([]string, 0)
	for key, entry := range entries {
		if entry.Expired(now) {
			expired = append(expired, key)
		}
	}

	return repository.del(context, expired)
}

// Clear removes every key under the prefix.
func (repository *RedisBackend) Clear(context context.Context) error {
	keys, err := repository.scan(context, "")
	if err != nil {
		return err
	}

	_, err = repository.del(context, keys)
	return err
}

// Stats counts entries under the prefix.
func (repository *RedisBackend) Stats(context context.Context, now time.Time) (BackendStats, error) {
	entries, err := repository.load(context)
	if err != nil {
		return BackendStats{}, err
	}

	stats := BackendStats{Total: int64(len(entries))}
	for _, entry := range entries {
		if !entry.Expired(now) {
			stats.Active++
		}
	}

	return stats, nil
}

// # Helpers

// scan lists prefixed keys that start with the given literal.
func (repository *RedisBackend) scan(context context.Context, literal string) ([]string, error) {
	match := repository.prefix + escapeGlob(literal) + "*"

	var keys []string
	iterator := repository.client.Scan(context, 0, match, scanBatch).Iterator()
	for iterator.Next(context) {
		keys = append(keys, iterator.Val())
	}

	if err := iterator.Err(); err != nil {
		return nil, fmt.Errorf("redis_cache_scan_failed: %w", err)
	}

	return keys, nil
}

// load reads every entry under the prefix, keyed by the full Redis key.
func (repository *RedisBackend) load(context context.Context) (map[string]Entry, error) {
	keys, err := repository.scan(context, "")
	if err != nil {
		return nil, err
	}

	entries := make(map[string]Entry, len(keys))
	if len(keys) == 0 {
		return entries, nil
	}

	values, err := repository.client.MGet(context, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_cache_mget_failed: %w", err)
	}

	for index, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Key vanished between SCAN and MGET
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("redis_cache_decode_failed: %w", err)
		}
		entries[keys[index]] = entry
	}

	return entries, nil
}

// del removes keys and returns how many existed.
func (repository *RedisBackend) del(context context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := repository.client.Del(context, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_cache_delete_failed: %w", err)
	}

	return removed, nil
}

// escapeGlob escapes Redis MATCH metacharacters in a literal.
func escapeGlob(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(value)
}
