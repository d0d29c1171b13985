package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// setupService returns a seeded service over an in-memory store.
func setupService(t *testing.T, opts ...Option) (*Service, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	opts = append([]Option{WithClock(func() time.Time { return testNow }), WithIDGenerator(sequentialIDs())}, opts...)
	svc := NewService(kv, events.NewBus(), opts...)
	require.NoError(t, svc.Initialize(InitOptions{SeedCatalog: true}))
	return svc, kv
}

func rawValue(t *testing.T, kv kvstore.Store, key string) []byte {
	t.Helper()
	raw, _, err := kv.Get(key)
	require.NoError(t, err)
	return raw
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// eventRecorder counts the snapshots delivered on every topic.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(t *testing.T, bus *events.Bus) *eventRecorder {
	r := &eventRecorder{}
	unsubscribe := bus.SubscribeAll(func(ev events.Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	t.Cleanup(unsubscribe)
	return r
}

func (r *eventRecorder) count(topic events.Topic) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Topic == topic {
			n++
		}
	}
	return n
}

func (r *eventRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// flakyStore fails writes to selected keys.
type flakyStore struct {
	*kvstore.Memory
	mu       sync.Mutex
	failSets map[string]error
}

func newFlakyStore(inner *kvstore.Memory) *flakyStore {
	return &flakyStore{Memory: inner, failSets: map[string]error{}}
}

func (f *flakyStore) failSet(key string, err error) {
	f.mu.Lock()
	f.failSets[key] = err
	f.mu.Unlock()
}

func (f *flakyStore) Set(key string, value []byte) error {
	f.mu.Lock()
	err := f.failSets[key]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.Set(key, value)
}

var errDiskFull = errors.New("disk full")

func bookByID(t *testing.T, svc *Service, id string) entities.Book {
	t.Helper()
	book, found, err := svc.Books.Get(id)
	require.NoError(t, err)
	require.True(t, found, "book %s", id)
	return book
}
