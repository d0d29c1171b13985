package bindings

import (
	"fmt"
	"sync"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
)

// Bookmarks is the persisted list of books saved for later.
type Bookmarks struct {
	mu    sync.Mutex
	kv    kvstore.Store
	items []entities.Bookmark
}

// NewBookmarks loads the bookmarks persisted in kv.
func NewBookmarks(kv kvstore.Store) (*Bookmarks, error) {
	items, err := kvstore.ReadCollection[entities.Bookmark](kv, kvstore.KeyBookmarks)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	return &Bookmarks{kv: kv, items: items}, nil
}

func (b *Bookmarks) index(key string) int {
	for i, item := range b.items {
		if ItemKey(item.Book) == key {
			return i
		}
	}
	return -1
}

func (b *Bookmarks) commit(next []entities.Bookmark) error {
	if err := kvstore.WriteCollection(b.kv, kvstore.KeyBookmarks, next); err != nil {
		return err
	}
	b.items = next
	return nil
}

// Add saves a snapshot of book. It returns false when the book is already
// bookmarked.
func (b *Bookmarks) Add(book entities.Book) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index(ItemKey(book)) >= 0 {
		return false, nil
	}
	next := make([]entities.Bookmark, len(b.items), len(b.items)+1)
	copy(next, b.items)
	next = append(next, entities.Bookmark{Book: book})
	if err := b.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops the bookmark with key. Removing a missing key is a no-op.
func (b *Bookmarks) Remove(key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(key)
	if i < 0 {
		return false, nil
	}
	next := make([]entities.Bookmark, 0, len(b.items)-1)
	next = append(next, b.items[:i]...)
	next = append(next, b.items[i+1:]...)
	if err := b.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bookmarks) IsBookmarked(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index(key) >= 0
}

// Items returns a copy of the bookmarks in insertion order.
func (b *Bookmarks) Items() []entities.Bookmark {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entities.Bookmark, len(b.items))
	copy(out, b.items)
	return out
}

// Clear removes every bookmark and the persisted list.
func (b *Bookmarks) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := kvstore.Delete(b.kv, kvstore.KeyBookmarks); err != nil {
		return err
	}
	b.items = []entities.Bookmark{}
	return nil
}
