package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"mbh/ledger-sync/internal/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Connection manages the SQLite database holding the sync history.
type Connection struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if needed) the database at dbPath with WAL
// journaling and applies the schema.
func Open(ctx context.Context, dbPath string) (*Connection, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Connection{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (c *Connection) Path() string {
	return c.dbPath
}
