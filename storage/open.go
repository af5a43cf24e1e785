package storage

import (
	"fmt"
	"time"

	"shop-harvester/config"
	"shop-harvester/utils"
)

// Open returns the Store selected by cfg.StoreDriver.
func Open(cfg *config.Config, logger *utils.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		logger.Debug("[storage] Opening SQLite store %s (table %s)", cfg.SQLitePath, cfg.StoreTable)
		s, err := NewSQLiteStore(cfg.SQLitePath, cfg.StoreTable)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.StorePostgres:
		logger.Debug("[storage] Connecting to PostgreSQL at %s:%s", cfg.PostgresHost, cfg.PostgresPort)
		retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
		s, err := NewPostgresStore(cfg.DSN(), cfg.StoreTable, retry)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StoreDriver)
	}
}
