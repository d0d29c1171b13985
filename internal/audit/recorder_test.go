package audit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
	"github.com/bookhaven/storefront/internal/store"
)

func TestRecorder(t *testing.T) {
	auditSvc, _ := setupTestService(t)

	bus := events.NewBus()
	svc := store.NewService(kvstore.NewMemory(), bus)
	require.NoError(t, svc.Initialize(store.InitOptions{SeedCatalog: true}))

	rec := NewRecorder(auditSvc, bus, svc)

	order, err := rec.CreateOrder(store.OrderInput{
		Buyer: store.GuestBuyer,
		Items: []entities.OrderItem{{BookID: "5", Title: "Dune", Quantity: 2, Price: decimal.RequireFromString("13.99")}},
	})
	require.NoError(t, err)

	_, err = rec.CreateOrder(store.OrderInput{
		Buyer: store.GuestBuyer,
		Items: []entities.OrderItem{{BookID: "5", Title: "Dune", Quantity: 99, Price: decimal.RequireFromString("13.99")}},
	})
	require.ErrorIs(t, err, store.ErrOutOfStock)

	rec.Close()

	changes, total, err := auditSvc.GetEventsByType(entities.AuditEventChange, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	topics := []string{changes[0].Topic, changes[1].Topic}
	assert.ElementsMatch(t, []string{"books-changed", "orders-changed"}, topics)

	orders, total, err := auditSvc.GetEventsByType(entities.AuditEventOrder, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	actions := []string{orders[0].Action, orders[1].Action}
	assert.ElementsMatch(t, []string{"order_placed", "order_out_of_stock"}, actions)

	placed, _, err := auditSvc.GetEventsByType(entities.AuditEventOrder, 10, 0)
	require.NoError(t, err)
	var entityIDs []string
	for _, e := range placed {
		entityIDs = append(entityIDs, e.EntityID)
	}
	assert.Contains(t, entityIDs, order.ID)

	t.Run("closed recorder ignores later changes", func(t *testing.T) {
		_, err := svc.Books.DecrementStock("1", 1)
		require.NoError(t, err)
		auditSvc.Flush()

		_, total, err := auditSvc.GetEventsByType(entities.AuditEventChange, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}
