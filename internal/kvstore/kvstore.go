// Package kvstore is the synchronous key-value layer every collection is persisted through.
//
// A Store holds whole serialized collections under fixed keys. Callers always
// read a full collection, mutate it in memory and write it back in one Set call;
// a backend must apply each Set atomically for its key.
//
// Backends:
//
//   - Memory: in-process map, used by tests and ephemeral runs
//   - kv.Repository (internal/database/kv): SQLite through gorm
//
// Money values are written as JSON numbers ("price": 11.49). Quoted decimals
// are still accepted when reading.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Logical keys of the persisted layout.
const (
	KeyBooks       = "bookstore_books"
	KeyUsers       = "bookstore_users"
	KeyOrders      = "bookstore_orders"
	KeyCurrentUser = "bookstore_current_user"
	KeyCart        = "cart"
	KeyBookmarks   = "bookmarks"
)

// ErrStorageFailure wraps every backend or serialization failure. It is not
// recovered anywhere in the data layer.
var ErrStorageFailure = errors.New("storage failure")

// Store is a persistent string-keyed store.
type Store interface {
	// Get returns the raw value for key. found is false when the key was never
	// written or has been removed.
	Get(key string) (value []byte, found bool, err error)

	// Set replaces the value for key.
	Set(key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// WrapRead marks a backend read error for key as a storage failure.
func WrapRead(key string, err error) error {
	return fmt.Errorf("%w: read %s: %v", ErrStorageFailure, key, err)
}

// ReadCollection loads the collection stored under key. A missing key yields
// an empty, non-nil collection.
func ReadCollection[T any](s Store, key string) ([]T, error) {
	data, found, err := s.Get(key)
	if err != nil {
		return nil, WrapRead(key, err)
	}
	if !found || len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorageFailure, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteCollection serializes items and replaces the value under key.
func WriteCollection[T any](s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageFailure, key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageFailure, key, err)
	}
	return nil
}

// ReadValue loads a single JSON object stored under key.
func ReadValue[T any](s Store, key string) (T, bool, error) {
	var value T
	data, found, err := s.Get(key)
	if err != nil {
		return value, false, WrapRead(key, err)
	}
	if !found || len(data) == 0 {
		return value, false, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("%w: decode %s: %v", ErrStorageFailure, key, err)
	}
	return value, true, nil
}

// WriteValue serializes a single JSON object under key.
func WriteValue[T any](s Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageFailure, key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageFailure, key, err)
	}
	return nil
}

// Delete removes key, wrapping backend errors as storage failures.
func Delete(s Store, key string) error {
	if err := s.Remove(key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrStorageFailure, key, err)
	}
	return nil
}
