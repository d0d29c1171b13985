package store

import (
	"errors"
	"fmt"
	"log"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
)

// CreateOrder places an order and takes its quantities out of the catalog.
//
// Every line is checked against current stock first; if any book is missing
// or short nothing is written and the error wraps ErrOutOfStock. Quantities
// of the same book on several lines are summed for the check. The total uses
// the unit prices submitted in the input, not the current catalog prices.
//
// The catalog is written before the order. If the order write fails the
// previous catalog is restored and the storage error is returned. The caller
// owns the cart and clears it on success.
func (s *Service) CreateOrder(in OrderInput) (entities.Order, error) {
	if err := in.validate(); err != nil {
		return entities.Order{}, err
	}

	s.mu.Lock()
	books, orders, order, err := s.placeOrder(in)
	if err != nil {
		s.mu.Unlock()
		return entities.Order{}, err
	}
	s.enqueue(func() {
		s.bus.Books.Emit(books)
		s.bus.Orders.Emit(orders)
	})
	s.mu.Unlock()

	s.deliver()
	return order, nil
}

// placeOrder runs the two passes of CreateOrder. Callers hold s.mu.
func (s *Service) placeOrder(in OrderInput) ([]entities.Book, []entities.Order, entities.Order, error) {
	books, err := s.Books.c.all()
	if err != nil {
		return nil, nil, entities.Order{}, err
	}
	orders, err := s.Orders.c.all()
	if err != nil {
		return nil, nil, entities.Order{}, err
	}

	requested := make(map[string]int, len(in.Items))
	for _, item := range in.Items {
		requested[item.BookID] += item.Quantity
	}
	for _, item := range in.Items {
		i := s.Books.c.index(books, item.BookID)
		if i < 0 {
			return nil, nil, entities.Order{}, outOfStock(item.Title, requested[item.BookID], 0)
		}
		if books[i].Stock < requested[item.BookID] {
			title := item.Title
			if title == "" {
				title = books[i].Title
			}
			return nil, nil, entities.Order{}, outOfStock(title, requested[item.BookID], books[i].Stock)
		}
	}

	previous := make([]entities.Book, len(books))
	copy(previous, books)
	for _, item := range in.Items {
		books[s.Books.c.index(books, item.BookID)].Stock -= item.Quantity
	}

	order := s.Orders.newOrder(in)
	if err := kvstore.WriteCollection(s.kv, kvstore.KeyBooks, books); err != nil {
		return nil, nil, entities.Order{}, err
	}
	orders = append(orders, order)
	if err := kvstore.WriteCollection(s.kv, kvstore.KeyOrders, orders); err != nil {
		if restoreErr := kvstore.WriteCollection(s.kv, kvstore.KeyBooks, previous); restoreErr != nil {
			log.Printf("[STORE] Failed to restore catalog after order write failure: %v", restoreErr)
			return nil, nil, entities.Order{}, errors.Join(err, fmt.Errorf("restore catalog: %w", restoreErr))
		}
		return nil, nil, entities.Order{}, err
	}
	return books, orders, order, nil
}
