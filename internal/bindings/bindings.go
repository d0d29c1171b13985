// Package bindings keeps UI-facing state in step with the data layer.
//
// Cart and Bookmarks own their persisted lists directly: every mutation
// rewrites the list in the store before it returns and there is no bus for
// them. Mirror and StatisticsMirror follow the repository collections through
// the change bus.
package bindings

import (
	"strings"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/store"
)

// Catalog resolves live stock for catalog-linked items.
type Catalog interface {
	Get(id string) (entities.Book, bool, error)
}

// OrderPlacer runs the order workflow.
type OrderPlacer interface {
	CreateOrder(in store.OrderInput) (entities.Order, error)
}

// ItemKey returns the key a book is stored under in a cart or bookmark list:
// the catalog id, or "title:<lowercased title>" for books without one.
func ItemKey(book entities.Book) string {
	if book.ID != "" {
		return book.ID
	}
	return "title:" + strings.ToLower(strings.TrimSpace(book.Title))
}
