// Package store implements the Books, Users and Orders repositories and the
// order workflow on top of a kvstore.Store.
//
// Every repository keeps its whole collection under one key. A mutation reads
// the collection, changes it in memory, writes it back in one Set and then
// emits the new snapshot on the change bus. All read-modify-write cycles of a
// Service share one writer lock, so they never interleave inside a process.
// Snapshots are queued under that lock and delivered after it is released, so
// subscribers may call back into the service. Delivery follows commit order:
// one goroutine at a time drains the queue, and a writer that finds delivery
// already in progress leaves its snapshot to the running drain.
//
// # Usage
//
//	svc := store.NewService(kv, bus)
//	if err := svc.Initialize(store.InitOptions{SeedCatalog: true}); err != nil {
//		return err
//	}
//	book, err := svc.Books.Add(store.BookInput{Title: "Dune", Author: "Frank Herbert", ...})
//	order, err := svc.CreateOrder(store.OrderInput{Buyer: buyer, Items: items})
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

const (
	DefaultLowStockThreshold = 10
	DefaultRecentOrdersLimit = 5
)

// Service owns the repositories and the order workflow.
type Service struct {
	kv  kvstore.Store
	bus *events.Bus

	mu sync.Mutex

	pendingMu sync.Mutex
	pending   []func()
	draining  bool

	now   func() time.Time
	newID func() string

	policy            StatusPolicy
	lowStockThreshold int
	recentOrdersLimit int

	Books  *Books
	Users  *Users
	Orders *Orders
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithStatusPolicy(policy StatusPolicy) Option {
	return func(s *Service) { s.policy = policy }
}

func WithLowStockThreshold(threshold int) Option {
	return func(s *Service) { s.lowStockThreshold = threshold }
}

func WithRecentOrdersLimit(limit int) Option {
	return func(s *Service) { s.recentOrdersLimit = limit }
}

// NewService creates a Service over kv publishing to bus. A nil bus gets a
// private one.
func NewService(kv kvstore.Store, bus *events.Bus, opts ...Option) *Service {
	if bus == nil {
		bus = events.NewBus()
	}
	s := &Service{
		kv:                kv,
		bus:               bus,
		now:               time.Now,
		newID:             func() string { return uuid.New().String() },
		policy:            StatusPolicyPermissive,
		lowStockThreshold: DefaultLowStockThreshold,
		recentOrdersLimit: DefaultRecentOrdersLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Books = &Books{c: collection[entities.Book]{
		svc: s, key: kvstore.KeyBooks, emitter: bus.Books,
		id: func(b entities.Book) string { return b.ID },
	}}
	s.Users = &Users{c: collection[entities.User]{
		svc: s, key: kvstore.KeyUsers, emitter: bus.Users,
		id: func(u entities.User) string { return u.ID },
	}}
	s.Orders = &Orders{c: collection[entities.Order]{
		svc: s, key: kvstore.KeyOrders, emitter: bus.Orders,
		id: func(o entities.Order) string { return o.ID },
	}}
	return s
}

// Bus returns the change bus the service publishes to.
func (s *Service) Bus() *events.Bus {
	return s.bus
}

// KV returns the backing store.
func (s *Service) KV() kvstore.Store {
	return s.kv
}

func (s *Service) LowStockThreshold() int {
	return s.lowStockThreshold
}

func (s *Service) StatusPolicy() StatusPolicy {
	return s.policy
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// collection is the shared read-modify-write machinery of a repository.
type collection[T any] struct {
	svc     *Service
	key     string
	emitter *events.Emitter[T]
	id      func(T) string
}

func (c collection[T]) all() ([]T, error) {
	return kvstore.ReadCollection[T](c.svc.kv, c.key)
}

func (c collection[T]) get(id string) (T, bool, error) {
	var zero T
	items, err := c.all()
	if err != nil {
		return zero, false, err
	}
	if i := c.index(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

func (c collection[T]) index(items []T, id string) int {
	for i, item := range items {
		if c.id(item) == id {
			return i
		}
	}
	return -1
}

func (c collection[T]) filter(keep func(T) bool) ([]T, error) {
	items, err := c.all()
	if err != nil {
		return nil, err
	}
	out := []T{}
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// mutate runs fn over the current collection under the writer lock. When fn
// reports a change the result is persisted and emitted once.
func (c collection[T]) mutate(fn func(items []T) ([]T, bool, error)) (bool, error) {
	c.svc.mu.Lock()
	items, err := c.all()
	if err != nil {
		c.svc.mu.Unlock()
		return false, err
	}
	next, changed, err := fn(items)
	if err != nil || !changed {
		c.svc.mu.Unlock()
		return false, err
	}
	if err := kvstore.WriteCollection(c.svc.kv, c.key, next); err != nil {
		c.svc.mu.Unlock()
		return false, err
	}
	emitter := c.emitter
	c.svc.enqueue(func() { emitter.Emit(next) })
	c.svc.mu.Unlock()

	c.svc.deliver()
	return true, nil
}

// enqueue schedules an event delivery. Callers hold s.mu, so the queue is in
// commit order.
func (s *Service) enqueue(fn func()) {
	s.pendingMu.Lock()
	s.pending = append(s.pending, fn)
	s.pendingMu.Unlock()
}

// deliver drains the event queue unless another call is already draining it.
// A nested call from a subscriber returns at once and its event follows the
// one being delivered.
func (s *Service) deliver() {
	s.pendingMu.Lock()
	if s.draining {
		s.pendingMu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		fn := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.pendingMu.Unlock()
		fn()
		s.pendingMu.Lock()
	}
	s.pending = nil
	s.draining = false
	s.pendingMu.Unlock()
}

func (c collection[T]) add(item T) error {
	_, err := c.mutate(func(items []T) ([]T, bool, error) {
		return append(items, item), true, nil
	})
	return err
}

// update applies change to the record with id. change may reject the merge
// with an error.
func (c collection[T]) update(id string, change func(T) (T, error)) (T, bool, error) {
	var updated T
	found, err := c.mutate(func(items []T) ([]T, bool, error) {
		i := c.index(items, id)
		if i < 0 {
			return nil, false, nil
		}
		next, err := change(items[i])
		if err != nil {
			return nil, false, err
		}
		items[i] = next
		updated = next
		return items, true, nil
	})
	return updated, found, err
}

func (c collection[T]) delete(id string) (bool, error) {
	return c.mutate(func(items []T) ([]T, bool, error) {
		i := c.index(items, id)
		if i < 0 {
			return nil, false, nil
		}
		return append(items[:i:i], items[i+1:]...), true, nil
	})
}
