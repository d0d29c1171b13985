package entrypoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/config"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/store"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Store.Backend = backend
	cfg.Database.Path = filepath.Join(t.TempDir(), "shop.db")
	cfg.Tasks.Workers = 1
	cfg.Watch.Schedule = "@every 1s"
	return cfg
}

func TestOpen_MemoryBackend(t *testing.T) {
	app, err := Open(testConfig(t, config.BackendMemory))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Audit)
	assert.Nil(t, app.Tasks)
	assert.Len(t, app.Books.Snapshot(), 5)

	users := app.Users.Snapshot()
	require.Len(t, users, 1)
	assert.Equal(t, store.BootstrapAdmin.Email, users[0].Email)

	book, found, err := app.Store.Books.Get("1")
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, app.Cart.Add(book))

	order, err := app.Cart.Checkout(nil, "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, "guest", order.UserID)
	assert.Equal(t, 0, app.Cart.Count())

	assert.Len(t, app.Orders.Snapshot(), 1)
	assert.Equal(t, 1, app.Statistics.Current().TotalOrders)
}

func TestOpen_SQLiteBackendRecordsActivity(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	app, err := Open(cfg)
	require.NoError(t, err)

	require.NotNil(t, app.Audit)
	require.NotNil(t, app.Tasks)

	one := 1
	book, _, err := app.Store.Books.Update("1", store.BookPatch{Stock: &one})
	require.NoError(t, err)

	_, err = app.Cart.Checkout(nil, "")
	require.Error(t, err, "empty cart")

	require.NoError(t, app.Cart.Add(book))
	_, err = app.Cart.Checkout(nil, "1 Main St")
	require.NoError(t, err)

	app.Audit.Flush()
	changes, _, err := app.Audit.GetEventsByType(entities.AuditEventChange, 10, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, changes)

	placed, _, err := app.Audit.GetEventsByType(entities.AuditEventOrder, 10, 0)
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, "order_placed", placed[0].Action)

	require.NoError(t, app.Close())

	// Data survives a restart and seeding does not run twice
	reopened, err := Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	b, found, err := reopened.Store.Books.Get("1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, b.Stock)
	assert.Len(t, reopened.Users.Snapshot(), 1)
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, "redis")
	_, err := Open(cfg)
	assert.Error(t, err)

	cfg = testConfig(t, config.BackendMemory)
	cfg.Checkout.OrderStatusPolicy = "anything-goes"
	_, err = Open(cfg)
	assert.Error(t, err)
}

func TestApp_WatchStopsWithContext(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	app, err := Open(cfg)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
