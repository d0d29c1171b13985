package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

func TestInitialize_SeedsMissingCollections(t *testing.T) {
	kv := kvstore.NewMemory()
	svc := NewService(kv, events.NewBus(), WithClock(func() time.Time { return testNow }))
	rec := recordEvents(t, svc.Bus())

	require.NoError(t, svc.Initialize(InitOptions{SeedCatalog: true, SeedAdmin: true}))

	books, err := svc.Books.All()
	require.NoError(t, err)
	require.Len(t, books, 5)
	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "Atomic Habits", books[0].Title)
	assert.Equal(t, "13.99", books[4].Price.StringFixed(2))
	assert.Equal(t, 22, books[4].Stock)

	users, err := svc.Users.All()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@bookhaven.com", users[0].Email)
	assert.True(t, users[0].IsAdmin())

	_, found, err := kv.Get(kvstore.KeyOrders)
	require.NoError(t, err)
	assert.True(t, found)

	assert.Zero(t, rec.total())
}

func TestInitialize_KeepsExistingCollections(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kvstore.WriteCollection(kv, kvstore.KeyBooks, []entities.Book{{ID: "x", Title: "Only"}}))
	require.NoError(t, kvstore.WriteCollection(kv, kvstore.KeyUsers, []entities.User{}))

	svc := NewService(kv, nil)
	require.NoError(t, svc.Initialize(InitOptions{SeedCatalog: true, SeedAdmin: true}))
	require.NoError(t, svc.Initialize(InitOptions{SeedCatalog: true, SeedAdmin: true}))

	books, err := svc.Books.All()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "x", books[0].ID)

	users, err := svc.Users.All()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestInitialize_WithoutSeeding(t *testing.T) {
	svc := NewService(kvstore.NewMemory(), nil)
	require.NoError(t, svc.Initialize(InitOptions{}))

	books, err := svc.Books.All()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCurrentUser(t *testing.T) {
	svc, kv := setupService(t)

	_, found, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.False(t, found)

	user, err := svc.Users.Add(UserInput{Name: "Alice Reader", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, svc.SetCurrentUser(&user))

	current, found, err := svc.CurrentUser()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user, current)

	require.NoError(t, svc.SetCurrentUser(nil))
	_, found, err = svc.CurrentUser()
	require.NoError(t, err)
	assert.False(t, found)

	_, present, err := kv.Get(kvstore.KeyCurrentUser)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestStatistics(t *testing.T) {
	svc, _ := setupService(t, WithRecentOrdersLimit(2))

	first := placeOrder(t, svc, alice, "5", 15)
	second := placeOrder(t, svc, alice, "1", 1)
	third := placeOrder(t, svc, alice, "2", 2)
	_, _, err := svc.Orders.UpdateStatus(second.ID, entities.OrderStatusCancelled)
	require.NoError(t, err)
	_, _, err = svc.Orders.UpdateStatus(third.ID, entities.OrderStatusShipped)
	require.NoError(t, err)
	_, err = svc.Users.Add(UserInput{Name: "Alice Reader", Email: "alice@example.com"})
	require.NoError(t, err)

	stats, err := svc.Statistics()
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalBooks)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalOrders)
	// 15 × 13.99 + 2 × 12.99
	assert.Equal(t, "235.83", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.LowStockBooks)

	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, third.ID, stats.RecentOrders[0].ID)
	assert.Equal(t, second.ID, stats.RecentOrders[1].ID)
	assert.NotEqual(t, first.ID, stats.RecentOrders[1].ID)
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, nil, nil, 10, 5)

	assert.Zero(t, stats.TotalBooks)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.NotNil(t, stats.RecentOrders)
	assert.Empty(t, stats.RecentOrders)
}

func TestEvents_SubscriberWriteIsDeliveredAfterCurrentEvent(t *testing.T) {
	svc, _ := setupService(t)

	var seen []int
	unsubscribe := svc.Bus().Books.Subscribe(func(books []entities.Book) {
		seen = append(seen, books[0].Stock)
		if books[0].Stock == 40 {
			_, _, err := svc.Books.Update("1", BookPatch{Stock: ptr(30)})
			assert.NoError(t, err)
		}
	})
	defer unsubscribe()

	_, _, err := svc.Books.Update("1", BookPatch{Stock: ptr(40)})
	require.NoError(t, err)

	assert.Equal(t, []int{40, 30}, seen)
	book, found, err := svc.Books.Get("1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 30, book.Stock)
}
