package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
)

// LowStockNotifier is told about books that ran low.
type LowStockNotifier interface {
	LogLowStock(bookID, title string, stock, threshold int)
}

// LowStockAlertTask announces that a book dropped below the restock threshold.
type LowStockAlertTask struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// Config returns the queue configuration for low-stock alerts.
func (t LowStockAlertTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "low_stock_alert",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// LowStockAlertProcessor creates a processor function for LowStockAlertTask.
func LowStockAlertProcessor(notifier LowStockNotifier) backlite.QueueProcessor[LowStockAlertTask] {
	return func(ctx context.Context, task LowStockAlertTask) error {
		if task.BookID == "" {
			return fmt.Errorf("low stock alert without book id")
		}

		log.Printf("[TASK] Low stock: %q (%s) has %d copies left, threshold %d", task.Title, task.BookID, task.Stock, task.Threshold)
		if notifier != nil {
			notifier.LogLowStock(task.BookID, task.Title, task.Stock, task.Threshold)
		}
		return nil
	}
}

// NewLowStockAlertQueue creates a backlite queue for low-stock alerts.
func NewLowStockAlertQueue(notifier LowStockNotifier) backlite.Queue {
	return backlite.NewQueue(LowStockAlertProcessor(notifier))
}

// AlertEnqueuer schedules low-stock alerts. *Client implements it.
type AlertEnqueuer interface {
	EnqueueLowStockAlert(task LowStockAlertTask) error
}

// LowStockMonitor watches catalog snapshots and enqueues an alert whenever a
// book crosses from at-or-above the threshold to below it. Books already low
// when the monitor starts stay quiet; books added below the threshold alert.
type LowStockMonitor struct {
	enqueuer  AlertEnqueuer
	threshold int

	mu          sync.Mutex
	last        map[string]int
	unsubscribe func()
}

// NewLowStockMonitor seeds the monitor with the current catalog and subscribes
// to catalog changes on bus.
func NewLowStockMonitor(enqueuer AlertEnqueuer, threshold int, current []entities.Book, bus *events.Bus) *LowStockMonitor {
	m := &LowStockMonitor{
		enqueuer:  enqueuer,
		threshold: threshold,
		last:      make(map[string]int, len(current)),
	}
	for _, b := range current {
		m.last[b.ID] = b.Stock
	}
	m.unsubscribe = bus.Books.Subscribe(m.Observe)
	return m
}

// Observe compares a catalog snapshot with the previous one.
func (m *LowStockMonitor) Observe(books []entities.Book) {
	m.mu.Lock()
	var alerts []LowStockAlertTask
	next := make(map[string]int, len(books))
	for _, b := range books {
		next[b.ID] = b.Stock
		prev, known := m.last[b.ID]
		if b.Stock < m.threshold && (!known || prev >= m.threshold) {
			alerts = append(alerts, LowStockAlertTask{
				BookID:    b.ID,
				Title:     b.Title,
				Stock:     b.Stock,
				Threshold: m.threshold,
			})
		}
	}
	m.last = next
	m.mu.Unlock()

	for _, alert := range alerts {
		if err := m.enqueuer.EnqueueLowStockAlert(alert); err != nil {
			log.Printf("[TASK ERROR] Failed to enqueue low stock alert for %s: %v", alert.BookID, err)
		}
	}
}

// Close stops watching the catalog.
func (m *LowStockMonitor) Close() {
	m.unsubscribe()
}
