// Package sqlite opens the SQLite database used for local development and tests.
//
// The database runs in WAL mode with a single open connection: SQLite allows
// one writer at a time, and ":memory:" databases exist per connection, so a
// larger pool would either contend on the write lock or see empty databases.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// Open opens (and creates, if needed) the database at path.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	log.WithField("path", path).Info("SQLite database opened")
	return db, nil
}
