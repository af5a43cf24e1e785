package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"shop-harvester/utils"
)

// PostgresStore keeps records in a PostgreSQL table.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore opens a connection, waits for the server using retry,
// and ensures the table exists.
func NewPostgresStore(dsn, table string, retry *utils.RetryConfig) (*PostgresStore, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id     SERIAL PRIMARY KEY,
			source VARCHAR(50) NOT NULL,
			title  TEXT        NOT NULL,
			price  TEXT,
			rating TEXT,
			link   TEXT        NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_source ON %[1]s(source);
	`, table))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &PostgresStore{sqlStore{
		db:          db,
		table:       table,
		name:        "postgres",
		orderBy:     "id",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}}, nil
}
