// Package storage persists search results in SQLite so repeated lookups
// skip the outbound search API until their entry expires.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zokybot/zoky-messenger-go/internal/config"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// DB wraps the SQLite connections.
// Writes go through a single connection; reads use a small pool.
type DB struct {
	writer   *sql.DB
	reader   *sql.DB
	cacheTTL time.Duration
	now      func() time.Time
}

// New opens (creating if needed) the database at dbPath and initializes the schema.
// cacheTTL specifies how long cached search results remain valid.
func New(ctx context.Context, dbPath string, cacheTTL time.Duration) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	writer, err := open(ctx, dbPath, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	if err := InitSchema(ctx, writer); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	reader, err := open(ctx, dbPath, 4)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{
		writer:   writer,
		reader:   reader,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

func open(ctx context.Context, dbPath string, maxConns int) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxConns)
	conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.DatabaseBusyTimeout.Milliseconds()),
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Close closes both connection pools.
func (db *DB) Close() error {
	return errors.Join(db.reader.Close(), db.writer.Close())
}

// Ping checks that the database still answers queries.
func (db *DB) Ping(ctx context.Context) error {
	return db.reader.PingContext(ctx)
}

// ttlCutoff returns the Unix timestamp before which entries are expired.
func (db *DB) ttlCutoff() int64 {
	return db.now().Add(-db.cacheTTL).Unix()
}
