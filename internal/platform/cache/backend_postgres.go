// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/aula/internal/platform/database/schema"
)

// # PostgreSQL Backend

// table names the durable tier's columns.
var table = schema.CacheEntry

// PostgresBackend stores entries in the cache_entries table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a durable tier over an existing pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// Get loads one row. Expired rows are returned as stored.
func (repository *PostgresBackend) Get(context context.Context, key string) (*Entry, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		table.Key, table.Value, table.ExpiresAt, table.CreatedAt, table.Table, table.Key,
	)

	var (
		entry Entry
		value []byte
	)
	err := repository.pool.QueryRow(context, query, key).Scan(
		&entry.Key,
		&value,
		&entry.ExpiresAt,
		&entry.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_cache_get_failed: %w", err)
	}

	entry.Value = value
	return &entry, nil
}

// Set upserts one row.
func (repository *PostgresBackend) Set(context context.Context, entry Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s,
		    %[4]s = EXCLUDED.%[4]s,
		    %[5]s = EXCLUDED.%[5]s`,
		table.Table, table.Key, table.Value, table.ExpiresAt, table.CreatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		entry.Key,
		[]byte(entry.Value),
		entry.ExpiresAt,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_cache_set_failed: %w", err)
	}

	return nil
}

// Delete removes one row if present.
func (repository *PostgresBackend) Delete(context context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table.Table, table.Key)

	if _, err := repository.pool.Exec(context, query, key); err != nil {
		return fmt.Errorf("postgres_cache_delete_failed: %w", err)
	}

	return nil
}

/*
DeleteMatching removes rows whose key matches the glob.

Description: The literal prefix of the pattern narrows the candidate set with
LIKE; the full glob is then applied in Go so both tiers share one matcher.
*/
func (repository *PostgresBackend) DeleteMatching(context context.Context, pattern string) (int64, error) {
	selectQuery := fmt.Sprintf(`SELECT %[2]s FROM %[1]s WHERE %[2]s LIKE $1 ESCAPE '\'`, table.Table, table.Key)
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, table.Table, table.Key)

	rows, err := repository.pool.Query(context, selectQuery, escapeLike(literalPrefix(pattern))+"%")
	if err != nil {
		return 0, fmt.Errorf("postgres_cache_scan_failed: %w", err)
	}

	candidates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("postgres_cache_scan_failed: %w", err)
	}

	matched := make([]string, 0, len(candidates))
	for _, key := range candidates {
		if matchKey(pattern, key) {
			matched = append(matched, key)
		}
	}

	if len(matched) == 0 {
		return 0, nil
	}

	tag, err := repository.pool.Exec(context, deleteQuery, matched)
	if err != nil {
		return 0, fmt.Errorf("postgres_cache_delete_matching_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteExpired purges rows with expiresat <= now.
func (repository *PostgresBackend) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, table.Table, table.ExpiresAt)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_cache_delete_expired_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Clear removes every row.
func (repository *PostgresBackend) Clear(context context.Context) error {
	query := `DELETE FROM ` + table.Table

	if _, err := repository.pool.Exec(context, query); err != nil {
		return fmt.Errorf("postgres_cache_clear_failed: %w", err)
	}

	return nil
}

// Stats counts total and live rows.
func (repository *PostgresBackend) Stats(context context.Context, now time.Time) (BackendStats, error) {
	query := fmt.Sprintf(`SELECT COUNT(*), COUNT(*) FILTER (WHERE %s > $1) FROM %s`, table.ExpiresAt, table.Table)

	var stats BackendStats
	if err := repository.pool.QueryRow(context, query, now).Scan(&stats.Total, &stats.Active); err != nil {
		return BackendStats{}, fmt.Errorf("postgres_cache_stats_failed: %w", err)
	}

	return stats, nil
}

// escapeLike escapes LIKE metacharacters in a literal prefix.
func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
