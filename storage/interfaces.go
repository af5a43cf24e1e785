package storage

import "shop-harvester/models"

// Store is the persistent, append-only table of harvested records.
// Rows come back from ReadAll in insertion order.
type Store interface {
	Clear() error
	Append(records []models.ListingRecord) error
	ReadAll() ([]models.ListingRecord, error)
	Close() error
}

// RecordWriter is the interface for file snapshots of harvested records.
type RecordWriter interface {
	Write(records []models.ListingRecord) error
	Close() error
}
