package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// InStock reports whether at least n copies can be sold.
func (b Book) InStock(n int) bool {
	return n > 0 && b.Stock >= n
}

// CartItem is a book snapshot taken when it was put into the cart.
// Price and stock are not kept in sync with the catalog afterwards.
type CartItem struct {
	Book
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity for this cart entry.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Bookmark is a book snapshot saved for later.
type Bookmark struct {
	Book
}
