package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bookhaven/storefront/internal/database/audit"
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/store"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log audit event: %v", err)
		}
	}()
}

// Flush waits for every LogAsync call made so far to finish.
func (s *Service) Flush() {
	s.pending.Wait()
}

// LogChange records a collection change broadcast on the bus.
func (s *Service) LogChange(ev events.Event) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventChange,
		Topic:       string(ev.Topic),
		Action:      "collection_write",
		Description: fmt.Sprintf("%s: %d records", ev.Topic, ev.Count),
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(event)
}

// LogOrderPlaced records a successful checkout.
func (s *Service) LogOrderPlaced(order entities.Order) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventOrder,
		Action:      "order_placed",
		Description: fmt.Sprintf("Order for %s: %d lines, total %s", order.UserName, len(order.Items), order.Total.StringFixed(2)),
		EntityID:    order.ID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"user_id":     order.UserID,
		"items_count": len(order.Items),
		"total":       order.Total.StringFixed(2),
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogOrderRejected records a checkout that did not create an order.
func (s *Service) LogOrderRejected(in store.OrderInput, err error) {
	action := "order_failed"
	switch {
	case errors.Is(err, store.ErrOutOfStock):
		action = "order_out_of_stock"
	case store.IsValidation(err):
		action = "order_invalid"
	}

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventOrder,
		Action:      action,
		Description: fmt.Sprintf("Order for %s rejected (%d lines)", in.Buyer.Name, len(in.Items)),
		EntityID:    in.Buyer.ID,
		Status:      entities.AuditStatusFailed,
		ErrorMsg:    truncate(err.Error(), 500),
	}

	s.LogAsync(event)
}

// LogLowStock records a low-stock alert for a book.
func (s *Service) LogLowStock(bookID, title string, stock, threshold int) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventLowStock,
		Action:      "low_stock_alert",
		Description: fmt.Sprintf("%s has %d copies left (threshold %d)", title, stock, threshold),
		EntityID:    bookID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogSession records a local sign-in or sign-out.
func (s *Service) LogSession(user entities.User, action string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSession,
		Action:      action,
		Description: user.Name + " <" + user.Email + ">",
		EntityID:    user.ID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsByTopic retrieves the change events of one bus topic.
func (s *Service) GetEventsByTopic(topic events.Topic, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByTopic(string(topic), limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max bytes without splitting a UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
