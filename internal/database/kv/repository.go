// Package kv stores key-value entries in SQLite.
//
// This package implements kvstore.Store on top of gorm.
//
// # Interface Implementation
//
//	var _ kvstore.Store = (*Repository)(nil)
//
// # Usage
//
//	repo := kv.NewRepository(db, writerID)
//	books, err := kvstore.ReadCollection[entities.Book](repo, kvstore.KeyBooks)
package kv

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookhaven/storefront/internal/entities"
)

// Repository handles all key-value database operations.
type Repository struct {
	db     *gorm.DB
	writer string
}

// NewRepository creates a new key-value repository. writer identifies this
// process in every row it writes, so foreign writes can be told apart.
func NewRepository(db *gorm.DB, writer string) *Repository {
	return &Repository{db: db, writer: writer}
}

// Writer returns the identity stamped on rows written by this repository.
func (r *Repository) Writer() string {
	return r.writer
}

// Get retrieves the value stored under key.
func (r *Repository) Get(key string) ([]byte, bool, error) {
	var entry entities.StoreEntry
	err := r.db.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(entry.Value) == 0 {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set creates or replaces the value under key in a single upsert statement.
func (r *Repository) Set(key string, value []byte) error {
	now := time.Now().UTC()
	entry := entities.StoreEntry{
		Key:       key,
		Value:     value,
		Writer:    r.writer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "writer", "updated_at"}),
	}).Create(&entry).Error
}

// Remove clears the entry for key. The row is kept with an empty value and a
// fresh writer stamp so ChangedSince reports the removal to other processes.
// Missing or already removed keys are ignored.
func (r *Repository) Remove(key string) error {
	return r.db.Model(&entities.StoreEntry{}).
		Where("key = ? AND length(value) > 0", key).
		Updates(map[string]interface{}{
			"value":      []byte{},
			"writer":     r.writer,
			"updated_at": time.Now().UTC(),
		}).Error
}

// Keys lists every key that currently holds a value.
func (r *Repository) Keys() ([]string, error) {
	var keys []string
	err := r.db.Model(&entities.StoreEntry{}).
		Where("length(value) > 0").
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}

// ChangedSince returns entries updated after since by any writer other than
// excludeWriter, oldest first. A removed key appears with an empty Value.
func (r *Repository) ChangedSince(since time.Time, excludeWriter string) ([]entities.StoreEntry, error) {
	var entries []entities.StoreEntry
	query := r.db.Where("updated_at > ?", since.UTC())
	if excludeWriter != "" {
		query = query.Where("writer <> ?", excludeWriter)
	}
	err := query.Order("updated_at ASC").Find(&entries).Error
	return entries, err
}
