package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookhaven/storefront/internal/database"
	auditRepo "github.com/bookhaven/storefront/internal/database/audit"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/store"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := auditRepo.NewRepository(db.DB)
	svc := NewService(repo)

	return svc, db.DB
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventChange,
		Action:      "test_change",
		Description: "Test change event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "test_change", saved.Action)
}

func TestService_LogChange(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogChange(events.Event{Topic: events.TopicBooks, Count: 5})
	svc.LogChange(events.Event{Topic: events.TopicOrders, Count: 1})
	svc.Flush()

	got, total, err := svc.GetEventsByTopic(events.TopicBooks, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "books-changed: 5 records", got[0].Description)
	assert.Equal(t, entities.AuditEventChange, got[0].EventType)
}

func TestService_LogOrder(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("placed", func(t *testing.T) {
		svc.LogOrderPlaced(entities.Order{
			ID:       "order-1",
			UserID:   "u-1",
			UserName: "Alice",
			Items:    []entities.OrderItem{{BookID: "5", Quantity: 2, Price: decimal.RequireFromString("13.99")}},
			Total:    decimal.RequireFromString("27.98"),
		})
		svc.Flush()

		var event entities.AuditEvent
		err := db.Where("action = ?", "order_placed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "order-1", event.EntityID)
		assert.Contains(t, event.Metadata, `"total":"27.98"`)
	})

	t.Run("out of stock", func(t *testing.T) {
		err := errors.Join(store.ErrOutOfStock, errors.New(`"Dune" requested 30, available 22`))
		svc.LogOrderRejected(store.OrderInput{Buyer: store.GuestBuyer}, err)
		svc.Flush()

		var event entities.AuditEvent
		err = db.Where("action = ?", "order_out_of_stock").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "available 22")
		assert.Equal(t, "guest", event.EntityID)
	})

	t.Run("invalid", func(t *testing.T) {
		svc.LogOrderRejected(store.OrderInput{}, store.NewValidationError("items", "order has no items"))
		svc.Flush()

		got, total, err := svc.GetEventsByType(entities.AuditEventOrder, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "order_invalid", got[0].Action)
	})
}

func TestService_LogLowStockAndSession(t *testing.T) {
	svc, _ := setupTestService(t)

	svc.LogLowStock("5", "Dune", 3, 10)
	svc.LogSession(entities.User{ID: "u-1", Name: "Alice", Email: "alice@example.com"}, "login")
	svc.Flush()

	lowStock, _, err := svc.GetEventsByType(entities.AuditEventLowStock, 10, 0)
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, "Dune has 3 copies left (threshold 10)", lowStock[0].Description)

	sessions, _, err := svc.GetEventsByType(entities.AuditEventSession, 10, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Alice <alice@example.com>", sessions[0].Description)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{
		EventType: entities.AuditEventChange,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
	}))
	require.NoError(t, svc.Log(&entities.AuditEvent{
		EventType: entities.AuditEventChange,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
	}))

	deleted, err := svc.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := svc.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	// "é" occupies bytes 6 and 7, so a 10-byte limit would cut it in half.
	got := truncate("Cafébé Noir in Paris", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Caféb...", got)
	assert.LessOrEqual(t, len(got), 10)
}
