package bindings

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/store"
)

// DefaultShippingFee is the flat fee added at checkout.
var DefaultShippingFee = decimal.RequireFromString("5.99")

// CartSummary is the checkout breakdown of a cart.
type CartSummary struct {
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Cart is the persisted shopping cart.
type Cart struct {
	mu          sync.Mutex
	kv          kvstore.Store
	catalog     Catalog
	orders      OrderPlacer
	shippingFee decimal.Decimal
	items       []entities.CartItem
}

// NewCart loads the cart persisted in kv.
func NewCart(kv kvstore.Store, catalog Catalog, orders OrderPlacer, shippingFee decimal.Decimal) (*Cart, error) {
	items, err := kvstore.ReadCollection[entities.CartItem](kv, kvstore.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Cart{
		kv:          kv,
		catalog:     catalog,
		orders:      orders,
		shippingFee: shippingFee,
		items:       items,
	}, nil
}

func (c *Cart) index(key string) int {
	for i, item := range c.items {
		if ItemKey(item.Book) == key {
			return i
		}
	}
	return -1
}

// commit persists next and makes it the in-memory state. Callers hold c.mu.
func (c *Cart) commit(next []entities.CartItem) error {
	if err := kvstore.WriteCollection(c.kv, kvstore.KeyCart, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func (c *Cart) clone() []entities.CartItem {
	out := make([]entities.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// available returns the catalog stock of id; a missing book has none.
func (c *Cart) available(id string) (entities.Book, int, error) {
	book, found, err := c.catalog.Get(id)
	if err != nil {
		return entities.Book{}, 0, err
	}
	if !found {
		return entities.Book{}, 0, nil
	}
	return book, book.Stock, nil
}

// Add puts one copy of book into the cart, or bumps the quantity of an
// existing entry. Catalog-linked books are refused with store.ErrOutOfStock
// when the copies already in the cart use up the stock.
func (c *Cart) Add(book entities.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := ItemKey(book)
	i := c.index(key)

	if book.ID != "" {
		_, stock, err := c.available(book.ID)
		if err != nil {
			return err
		}
		inCart := 0
		if i >= 0 {
			inCart = c.items[i].Quantity
		}
		if stock-inCart < 1 {
			return fmt.Errorf("%w: %q has no copies left to add", store.ErrOutOfStock, book.Title)
		}
	}

	next := c.clone()
	if i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, entities.CartItem{Book: book, Quantity: 1})
	}
	return c.commit(next)
}

// Remove drops the entry with key. Removing a missing key is a no-op.
func (c *Cart) Remove(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(key)
	if i < 0 {
		return false, nil
	}
	next := append(c.clone()[:i:i], c.items[i+1:]...)
	if err := c.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// SetQuantity changes the quantity of an entry. n must be at least 1 and,
// for catalog-linked items, no more than the current stock.
func (c *Cart) SetQuantity(key string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 {
		return store.NewValidationError("quantity", "must be at least 1")
	}
	i := c.index(key)
	if i < 0 {
		return fmt.Errorf("cart item %s: %w", key, store.ErrNotFound)
	}
	if id := c.items[i].ID; id != "" {
		_, stock, err := c.available(id)
		if err != nil {
			return err
		}
		if n > stock {
			return fmt.Errorf("%w: %q requested %d, available %d", store.ErrOutOfStock, c.items[i].Title, n, stock)
		}
	}

	next := c.clone()
	next[i].Quantity = n
	return c.commit(next)
}

// Clear empties the cart and removes its persisted state.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clear()
}

func (c *Cart) clear() error {
	if err := kvstore.Delete(c.kv, kvstore.KeyCart); err != nil {
		return err
	}
	c.items = []entities.CartItem{}
	return nil
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []entities.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone()
}

// Count returns the number of copies in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Subtotal returns Σ price × quantity at the prices captured when added.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal()
}

func (c *Cart) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Summary adds the shipping fee to the subtotal. An empty cart ships free.
func (c *Cart) Summary() CartSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CartSummary{Subtotal: c.subtotal(), Shipping: decimal.Zero}
	for _, item := range c.items {
		s.Items += item.Quantity
	}
	if len(c.items) > 0 {
		s.Shipping = c.shippingFee
	}
	s.Total = s.Subtotal.Add(s.Shipping)
	return s
}

// Checkout places an order for the whole cart and clears it on success.
// A nil buyer checks out as store.GuestBuyer. Items without a catalog id
// cannot be ordered.
func (c *Cart) Checkout(buyer *entities.User, shippingAddress string) (entities.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return entities.Order{}, store.NewValidationError("items", "cart is empty")
	}

	in := store.OrderInput{Buyer: store.GuestBuyer, ShippingAddress: shippingAddress}
	if buyer != nil {
		in.Buyer = store.BuyerFromUser(*buyer)
	}
	for _, item := range c.items {
		if item.ID == "" {
			return entities.Order{}, store.NewValidationError("items", fmt.Sprintf("%q is not in the catalog", item.Title))
		}
		in.Items = append(in.Items, entities.OrderItem{
			BookID:   item.ID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	order, err := c.orders.CreateOrder(in)
	if err != nil {
		return entities.Order{}, err
	}
	if err := c.clear(); err != nil {
		return order, fmt.Errorf("order %s placed but cart not cleared: %w", order.ID, err)
	}
	return order, nil
}
