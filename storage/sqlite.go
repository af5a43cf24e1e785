package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the table exists.
func NewSQLiteStore(path, table string) (*SQLiteStore, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer; keeps Clear and Append on the same connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			source TEXT NOT NULL,
			title  TEXT NOT NULL,
			price  TEXT,
			rating TEXT,
			link   TEXT NOT NULL
		)`, table))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &SQLiteStore{sqlStore{
		db:          db,
		table:       table,
		name:        "sqlite",
		orderBy:     "rowid",
		placeholder: func(int) string { return "?" },
	}}, nil
}
