package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
)

// GetSearchResult returns the fresh cached result for (topic, query).
// Missing and expired entries both return domerrors.ErrNotFound.
func (db *DB) GetSearchResult(ctx context.Context, topic, query string) (*SearchResult, error) {
	const stmt = `
		SELECT topic, query, poster_url, cached_at
		FROM search_cache
		WHERE topic = ? AND query = ? AND cached_at > ?
	`

	var result SearchResult
	err := db.reader.QueryRowContext(ctx, stmt, topic, query, db.ttlCutoff()).Scan(
		&result.Topic,
		&result.Query,
		&result.PosterURL,
		&result.CachedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[storage:get_search] query %s cache: %w", topic, err)
	}

	return &result, nil
}

// SaveSearchResult inserts or refreshes a cached result.
func (db *DB) SaveSearchResult(ctx context.Context, result *SearchResult) error {
	const stmt = `
		INSERT INTO search_cache (topic, query, poster_url, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(topic, query) DO UPDATE SET
			poster_url = excluded.poster_url,
			cached_at = excluded.cached_at
	`

	start := time.Now()
	cachedAt := db.now().Unix()
	if _, err := db.writer.ExecContext(ctx, stmt, result.Topic, result.Query, result.PosterURL, cachedAt); err != nil {
		return fmt.Errorf("[storage:save_search] save %s cache: %w", result.Topic, err)
	}
	result.CachedAt = cachedAt

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SaveSearchResult",
			"duration_ms", duration.Milliseconds(),
			"topic", result.Topic)
	}
	return nil
}

// DeleteExpiredSearchResults removes entries older than the cache TTL.
func (db *DB) DeleteExpiredSearchResults(ctx context.Context) (int64, error) {
	res, err := db.writer.ExecContext(ctx, `DELETE FROM search_cache WHERE cached_at <= ?`, db.ttlCutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired search results: %w", err)
	}
	return res.RowsAffected()
}

// CountSearchResults returns the number of cached rows, expired ones included.
func (db *DB) CountSearchResults(ctx context.Context) (int, error) {
	var count int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count search results: %w", err)
	}
	return count, nil
}
