package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Metadata operations

// CreateMetadata creates a new metadata record
func (db *Database) CreateMetadata(metadata *Metadata) error {
	metadata.CreatedAt = time.Now()
	metadata.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), metadata)
}

// UpdateMetadata updates an existing metadata record
func (db *Database) UpdateMetadata(metadata *Metadata) error {
	metadata.UpdatedAt = time.Now()
	return db.store.Update(metadata.ID, metadata)
}

// GetMetadataByID retrieves a metadata record by ID
func (db *Database) GetMetadataByID(id uint64) (*Metadata, error) {
	var metadata Metadata
	err := db.store.Get(id, &metadata)
	if err != nil {
		return nil, err
	}
	return &metadata, nil
}

// GetMetadataByIdentifier retrieves a metadata record by provider
// identifier and source
func (db *Database) GetMetadataByIdentifier(identifier string, source MetadataSource) (*Metadata, error) {
	var metadata Metadata
	err := db.store.FindOne(&metadata,
		bolthold.Where("Identifier").Eq(identifier).And("Source").Eq(source))
	if err != nil {
		return nil, err
	}
	return &metadata, nil
}

// GetAllMetadata retrieves all metadata records
func (db *Database) GetAllMetadata() ([]*Metadata, error) {
	var items []*Metadata
	err := db.store.Find(&items, nil)
	return items, err
}

// GetMetadataBySource retrieves all metadata records from a provider
func (db *Database) GetMetadataBySource(source MetadataSource) ([]*Metadata, error) {
	var items []*Metadata
	err := db.store.Find(&items, bolthold.Where("Source").Eq(source))
	return items, err
}

// DeleteMetadata deletes a metadata record by ID
func (db *Database) DeleteMetadata(id uint64) error {
	return db.store.Delete(id, &Metadata{})
}

// Seen operations

// CreateSeen creates a new consumption record
func (db *Database) CreateSeen(seen *Seen) error {
	seen.CreatedAt = time.Now()
	seen.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), seen)
}

// GetSeenByID retrieves a consumption record by ID
func (db *Database) GetSeenByID(id uint64) (*Seen, error) {
	var seen Seen
	err := db.store.Get(id, &seen)
	if err != nil {
		return nil, err
	}
	return &seen, nil
}

// GetSeenByMetadataID retrieves all consumption records for a media item
func (db *Database) GetSeenByMetadataID(metadataID uint64) ([]*Seen, error) {
	var items []*Seen
	err := db.store.Find(&items, bolthold.Where("MetadataID").Eq(metadataID))
	return items, err
}

// LatestSeen retrieves the most recent consumption record for a media
// item, ordered by consumption time. Undated records fall back to
// their creation time.
func (db *Database) LatestSeen(metadataID uint64) (*Seen, error) {
	items, err := db.GetSeenByMetadataID(metadataID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, bolthold.ErrNotFound
	}

	latest := items[0]
	for _, seen := range items[1:] {
		if seenTime(seen).After(seenTime(latest)) {
			latest = seen
		}
	}
	return latest, nil
}

// seenTime is the instant a consumption record is ordered by
func seenTime(seen *Seen) time.Time {
	if seen.FinishedOn != nil {
		return *seen.FinishedOn
	}
	return seen.CreatedAt
}

// GetAllSeen retrieves all consumption records
func (db *Database) GetAllSeen() ([]*Seen, error) {
	var items []*Seen
	err := db.store.Find(&items, nil)
	return items, err
}

// DeleteSeen deletes a consumption record by ID
func (db *Database) DeleteSeen(id uint64) error {
	return db.store.Delete(id, &Seen{})
}

// DeleteSeenByMetadataID deletes all consumption records for a media item
func (db *Database) DeleteSeenByMetadataID(metadataID uint64) error {
	var items []*Seen
	err := db.store.Find(&items, bolthold.Where("MetadataID").Eq(metadataID))
	if err != nil {
		return err
	}

	for _, seen := range items {
		if err := db.store.Delete(seen.ID, &Seen{}); err != nil {
			return err
		}
	}

	return nil
}
