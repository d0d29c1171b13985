package bindings

import (
	"fmt"
	"log"
	"sync"

	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
)

// Mirror holds the latest snapshot of one repository collection.
type Mirror[T any] struct {
	mu          sync.RWMutex
	items       []T
	fromEvent   bool
	unsubscribe func()
}

// NewMirror seeds a mirror from load and keeps it current from emitter.
// An event that arrives while load runs wins over the loaded value.
func NewMirror[T any](load func() ([]T, error), emitter *events.Emitter[T]) (*Mirror[T], error) {
	m := &Mirror[T]{}
	m.unsubscribe = emitter.Subscribe(m.set)

	items, err := load()
	if err != nil {
		m.unsubscribe()
		return nil, fmt.Errorf("failed to load %s: %w", emitter.Topic(), err)
	}

	m.mu.Lock()
	if !m.fromEvent {
		m.items = items
	}
	m.mu.Unlock()
	return m, nil
}

func (m *Mirror[T]) set(items []T) {
	m.mu.Lock()
	m.items = items
	m.fromEvent = true
	m.mu.Unlock()
}

// Snapshot returns a copy of the current collection.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Close stops following the bus. It is safe to call more than once.
func (m *Mirror[T]) Close() {
	m.unsubscribe()
}

// StatisticsSource computes dashboard statistics.
type StatisticsSource interface {
	Statistics() (entities.Statistics, error)
}

// StatisticsMirror recomputes statistics whenever any collection changes.
type StatisticsMirror struct {
	mu          sync.RWMutex
	source      StatisticsSource
	stats       entities.Statistics
	unsubscribe func()
}

func NewStatisticsMirror(source StatisticsSource, bus *events.Bus) (*StatisticsMirror, error) {
	stats, err := source.Statistics()
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	m := &StatisticsMirror{source: source, stats: stats}
	m.unsubscribe = bus.SubscribeAll(m.refresh)
	return m, nil
}

func (m *StatisticsMirror) refresh(ev events.Event) {
	stats, err := m.source.Statistics()
	if err != nil {
		log.Printf("Failed to refresh statistics after %s: %v", ev.Topic, err)
		return
	}
	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()
}

// Current returns the latest statistics.
func (m *StatisticsMirror) Current() entities.Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *StatisticsMirror) Close() {
	m.unsubscribe()
}
