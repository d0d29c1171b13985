package store

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/internal/entities"
)

// BookInput holds the fields of a new book. ID and CreatedAt are assigned on Add.
type BookInput struct {
	Title       string
	Author      string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
	Stock       int
}

// BookPatch is a partial update. Nil fields keep their current value.
type BookPatch struct {
	Title       *string
	Author      *string
	Price       *decimal.Decimal
	Image       *string
	Description *string
	Category    *string
	Stock       *int
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewValidationError("author", "must not be empty")
	}
	if in.Price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	if in.Stock < 0 {
		return NewValidationError("stock", "must not be negative")
	}
	return nil
}

func (p BookPatch) apply(b entities.Book) (entities.Book, error) {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return b, NewValidationError("title", "must not be empty")
		}
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		if strings.TrimSpace(*p.Author) == "" {
			return b, NewValidationError("author", "must not be empty")
		}
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return b, NewValidationError("price", "must not be negative")
		}
		b.Price = *p.Price
	}
	if p.Image != nil {
		b.Image = *p.Image
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Category != nil {
		b.Category = strings.TrimSpace(*p.Category)
	}
	if p.Stock != nil {
		if *p.Stock < 0 {
			return b, NewValidationError("stock", "must not be negative")
		}
		b.Stock = *p.Stock
	}
	return b, nil
}

// Books is the catalog repository.
type Books struct {
	c collection[entities.Book]
}

// All returns the catalog in insertion order.
func (r *Books) All() ([]entities.Book, error) {
	return r.c.all()
}

func (r *Books) Get(id string) (entities.Book, bool, error) {
	return r.c.get(id)
}

// Add validates in, assigns an id and appends the book to the catalog.
func (r *Books) Add(in BookInput) (entities.Book, error) {
	if err := in.validate(); err != nil {
		return entities.Book{}, err
	}
	book := entities.Book{
		ID:          r.c.svc.newID(),
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Price:       in.Price,
		Image:       in.Image,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		CreatedAt:   r.c.svc.timestamp(),
	}
	if err := r.c.add(book); err != nil {
		return entities.Book{}, err
	}
	return book, nil
}

// Update merges patch into the book with id. found is false when no such
// book exists; nothing is written in that case.
func (r *Books) Update(id string, patch BookPatch) (entities.Book, bool, error) {
	return r.c.update(id, patch.apply)
}

func (r *Books) Delete(id string) (bool, error) {
	return r.c.delete(id)
}

// DecrementStock subtracts amount from the stock of a book. It returns false
// without writing when the book is absent, amount is below 1 or the stock
// cannot cover it.
func (r *Books) DecrementStock(id string, amount int) (bool, error) {
	if amount < 1 {
		return false, nil
	}
	return r.c.mutate(func(books []entities.Book) ([]entities.Book, bool, error) {
		i := r.c.index(books, id)
		if i < 0 || books[i].Stock < amount {
			return nil, false, nil
		}
		books[i].Stock -= amount
		return books, true, nil
	})
}

// Search matches query case-insensitively against title, author and category.
func (r *Books) Search(query string) ([]entities.Book, error) {
	q := strings.ToLower(query)
	return r.c.filter(func(b entities.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Category), q)
	})
}

// ByCategory returns the books whose category equals category exactly.
func (r *Books) ByCategory(category string) ([]entities.Book, error) {
	return r.c.filter(func(b entities.Book) bool {
		return b.Category == category
	})
}

// Categories returns the distinct categories in first-seen order.
func (r *Books) Categories() ([]string, error) {
	books, err := r.c.all()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := []string{}
	for _, b := range books {
		if b.Category == "" || seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		categories = append(categories, b.Category)
	}
	return categories, nil
}

// LowStock returns the books whose stock is below the configured threshold.
func (r *Books) LowStock() ([]entities.Book, error) {
	threshold := r.c.svc.lowStockThreshold
	return r.c.filter(func(b entities.Book) bool {
		return b.Stock < threshold
	})
}
