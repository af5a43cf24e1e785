package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"shop-harvester/models"
)

// ErrInvalidTable is returned for a table name that is not a plain identifier.
var ErrInvalidTable = errors.New("invalid table name")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const (
	insertBatchSize = 50
	columnsPerRow   = 5
)

// sqlStore holds the statements shared by the SQL backends. Prices and
// ratings are stored as the raw harvested text.
type sqlStore struct {
	db          *sql.DB
	table       string
	name        string
	orderBy     string
	placeholder func(n int) string
}

func checkTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

// Clear deletes every row. Callers sequence it before any Append of the same run.
func (s *sqlStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM " + s.table); err != nil {
		return fmt.Errorf("%s: clear: %w", s.name, err)
	}
	return nil
}

// Append inserts records in order inside one transaction.
func (s *sqlStore) Append(records []models.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.name, err)
	}

	for i := 0; i < len(records); i += insertBatchSize {
		end := min(i+insertBatchSize, len(records))
		if err := s.insertBatch(tx, records[i:end]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.name, err)
	}
	return nil
}

func (s *sqlStore) insertBatch(tx *sql.Tx, batch []models.ListingRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*columnsPerRow)

	for idx, r := range batch {
		base := idx * columnsPerRow
		ph := make([]string, columnsPerRow)
		for c := range ph {
			ph[c] = s.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, string(r.Source), r.Title, r.RawPrice, r.RawRating, r.Link)
	}

	query := fmt.Sprintf("INSERT INTO %s (source, title, price, rating, link) VALUES %s",
		s.table, strings.Join(valueStrings, ","))
	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("%s: insert: %w", s.name, err)
	}
	return nil
}

// ReadAll returns every stored row in insertion order.
func (s *sqlStore) ReadAll() ([]models.ListingRecord, error) {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT source, title, price, rating, link FROM %s ORDER BY %s", s.table, s.orderBy))
	if err != nil {
		return nil, fmt.Errorf("%s: read all: %w", s.name, err)
	}
	defer rows.Close()

	records := []models.ListingRecord{}
	for rows.Next() {
		var r models.ListingRecord
		var source string
		if err := rows.Scan(&source, &r.Title, &r.RawPrice, &r.RawRating, &r.Link); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.name, err)
		}
		r.Source = models.Source(source)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
