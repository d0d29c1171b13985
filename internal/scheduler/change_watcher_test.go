package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/database"
	"github.com/bookhaven/storefront/internal/database/kv"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

func setupSharedStore(t *testing.T) (local, remote *kv.Repository) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return kv.NewRepository(db.DB, "local"), kv.NewRepository(db.DB, "remote")
}

type bookSink struct {
	mu        sync.Mutex
	snapshots [][]entities.Book
}

func (s *bookSink) receive(books []entities.Book) {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, books)
	s.mu.Unlock()
}

func (s *bookSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *bookSink) last() []entities.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[len(s.snapshots)-1]
}

func TestChangeWatcher_Poll(t *testing.T) {
	local, remote := setupSharedStore(t)
	bus := events.NewBus()
	sink := &bookSink{}
	bus.Books.Subscribe(sink.receive)
	users := 0
	bus.Users.Subscribe(func([]entities.User) { users++ })

	watcher := NewChangeWatcher(local, bus, "@every 1h")
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, kvstore.WriteCollection(remote, kvstore.KeyBooks, []entities.Book{{ID: "1", Title: "Atomic Habits", Stock: 3}}))
	require.NoError(t, kvstore.WriteCollection(local, kvstore.KeyUsers, []entities.User{{ID: "u-1"}}))
	require.NoError(t, kvstore.WriteCollection(remote, kvstore.KeyCart, []entities.CartItem{}))

	n, err := watcher.Poll()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Equal(t, 1, sink.count())
	assert.Equal(t, 3, sink.last()[0].Stock)
	assert.Zero(t, users)

	t.Run("nothing new", func(t *testing.T) {
		n, err := watcher.Poll()
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 1, sink.count())
	})

	t.Run("corrupt value is skipped", func(t *testing.T) {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, remote.Set(kvstore.KeyOrders, []byte("{broken")))

		n, err := watcher.Poll()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("removed collection is broadcast empty", func(t *testing.T) {
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, remote.Remove(kvstore.KeyBooks))

		n, err := watcher.Poll()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Equal(t, 2, sink.count())
		assert.Empty(t, sink.last())
	})
}

func TestChangeWatcher_StartStop(t *testing.T) {
	local, remote := setupSharedStore(t)
	bus := events.NewBus()
	sink := &bookSink{}
	bus.Books.Subscribe(sink.receive)

	watcher := NewChangeWatcher(local, bus, "@every 1s")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, watcher.Start(ctx))
	assert.True(t, watcher.IsRunning())
	require.NoError(t, watcher.Start(ctx))

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, kvstore.WriteCollection(remote, kvstore.KeyBooks, []entities.Book{{ID: "5", Title: "Dune", Stock: 22}}))

	assert.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return !watcher.IsRunning() }, 2*time.Second, 20*time.Millisecond)
}

func TestChangeWatcher_InvalidSchedule(t *testing.T) {
	local, _ := setupSharedStore(t)

	watcher := NewChangeWatcher(local, events.NewBus(), "every now and then")
	err := watcher.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, watcher.IsRunning())
}
