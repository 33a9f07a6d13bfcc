package database

import (
	"fmt"
	"os"
	"path/filepath"

	"dq-index/internal/config"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver, registers "sqlite"
)

const driverName = "sqlite"

// NewSQLXSQLiteDB opens (creating if needed) the SQLite file at path and verifies it.
// The returned handle is shared by every request.
func NewSQLXSQLiteDB(path string) (*sqlx.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driverName, config.SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// SQLite serialises writers; a small pool keeps readers concurrent without
	// piling up writers behind busy_timeout.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

// ensureDir creates the directory holding the database file.
func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return nil
}
