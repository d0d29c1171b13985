package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/kvstore"
)

// ChangeSource exposes writes made to the store by other processes.
type ChangeSource interface {
	ChangedSince(since time.Time, excludeWriter string) ([]entities.StoreEntry, error)
	Writer() string
}

// ChangeWatcher polls the shared store for collections rewritten by another
// process and re-broadcasts them on the local bus. The broadcast is advisory:
// the other writer has already won and nothing is merged. A collection key
// removed by another process is re-broadcast as an empty collection.
type ChangeWatcher struct {
	source   ChangeSource
	bus      *events.Bus
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	since      time.Time
	isRunning  bool
	isPolling  bool
	cancelFunc context.CancelFunc
}

// NewChangeWatcher creates a watcher that reports writes made after now.
func NewChangeWatcher(source ChangeSource, bus *events.Bus, schedule string) *ChangeWatcher {
	return &ChangeWatcher{
		source:   source,
		bus:      bus,
		schedule: schedule,
		since:    time.Now().UTC(),
		cron:     newCron(),
	}
}

// Start schedules polling. It stops on its own when ctx ends.
func (w *ChangeWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return nil
	}

	if err := ValidateSchedule(w.schedule); err != nil {
		return err
	}

	entryID, err := w.cron.AddFunc(w.schedule, func() {
		if _, err := w.Poll(); err != nil {
			log.Printf("[WATCH] Poll failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule change watcher: %w", err)
	}
	w.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, w.cancelFunc = context.WithCancel(ctx)

	w.cron.Start()
	w.isRunning = true

	log.Printf("[WATCH] Started with schedule '%s' as writer %s", w.schedule, w.source.Writer())

	go func() {
		<-cancelCtx.Done()
		w.Stop()
	}()

	return nil
}

// Stop halts polling and waits for a running poll to finish.
func (w *ChangeWatcher) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	cancel := w.cancelFunc
	w.cancelFunc = nil
	w.cron.Remove(w.entryID)
	w.mu.Unlock()

	ctx := w.cron.Stop()
	<-ctx.Done()
	if cancel != nil {
		cancel()
	}

	log.Printf("[WATCH] Stopped")
}

// IsRunning returns whether polling is scheduled.
func (w *ChangeWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// Poll re-emits every repository collection written by another process since
// the previous poll and returns how many were emitted. Overlapping polls are
// skipped.
func (w *ChangeWatcher) Poll() (int, error) {
	w.mu.Lock()
	if w.isPolling {
		w.mu.Unlock()
		return 0, nil
	}
	w.isPolling = true
	since := w.since
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.isPolling = false
		w.mu.Unlock()
	}()

	entries, err := w.source.ChangedSince(since, w.source.Writer())
	if err != nil {
		return 0, fmt.Errorf("read changes: %w", err)
	}

	emitted := 0
	latest := since
	for _, entry := range entries {
		if entry.UpdatedAt.After(latest) {
			latest = entry.UpdatedAt
		}
		ok, err := w.emit(entry)
		if err != nil {
			log.Printf("[WATCH] Skipping %s from %s: %v", entry.Key, entry.Writer, err)
			continue
		}
		if ok {
			log.Printf("[WATCH] %s rewritten by %s", entry.Key, entry.Writer)
			emitted++
		}
	}

	w.mu.Lock()
	w.since = latest
	w.mu.Unlock()
	return emitted, nil
}

func (w *ChangeWatcher) emit(entry entities.StoreEntry) (bool, error) {
	switch entry.Key {
	case kvstore.KeyBooks:
		return decodeAndEmit(entry.Value, w.bus.Books)
	case kvstore.KeyUsers:
		return decodeAndEmit(entry.Value, w.bus.Users)
	case kvstore.KeyOrders:
		return decodeAndEmit(entry.Value, w.bus.Orders)
	default:
		return false, nil
	}
}

// decodeAndEmit re-broadcasts a collection. An empty value is a removed key
// and is broadcast as an empty collection.
func decodeAndEmit[T any](raw []byte, emitter *events.Emitter[T]) (bool, error) {
	var items []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return false, err
		}
	}
	if items == nil {
		items = []T{}
	}
	emitter.Emit(items)
	return true, nil
}
