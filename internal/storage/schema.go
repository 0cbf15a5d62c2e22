package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return createSearchCacheTable(ctx, db)
}

func createSearchCacheTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS search_cache (
		topic TEXT NOT NULL,
		query TEXT NOT NULL,
		poster_url TEXT NOT NULL,
		cached_at INTEGER NOT NULL,
		PRIMARY KEY (topic, query)
	);
	CREATE INDEX IF NOT EXISTS idx_search_cache_cached_at ON search_cache(cached_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create search_cache table: %w", err)
	}

	return nil
}
