// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrDatabaseError wraps failures from the underlying SQLite store.
var ErrDatabaseError = errors.New("identity database error")

// SQLiteScope is a Scope persisted in a SQLite database, used for the
// device scope so the user identifier survives across runs.
type SQLiteScope struct {
	db *sql.DB
}

// OpenSQLiteScope opens (or creates) the identity database at path.
func OpenSQLiteScope(path string) (*SQLiteScope, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS identifiers (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return &SQLiteScope{db: db}, nil
}

// Get returns the stored value for key.
func (s *SQLiteScope) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM identifiers WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteScope) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO identifiers (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteScope) Close() error {
	return s.db.Close()
}
