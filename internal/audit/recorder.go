package audit

import (
	"github.com/bookhaven/storefront/internal/entities"
	"github.com/bookhaven/storefront/internal/events"
	"github.com/bookhaven/storefront/internal/store"
)

// OrderPlacer runs the order workflow.
type OrderPlacer interface {
	CreateOrder(in store.OrderInput) (entities.Order, error)
}

// Recorder feeds bus traffic and checkout outcomes into the activity log.
type Recorder struct {
	svc         *Service
	orders      OrderPlacer
	unsubscribe func()
}

// NewRecorder subscribes to every topic of bus. orders may be nil when only
// change events should be recorded.
func NewRecorder(svc *Service, bus *events.Bus, orders OrderPlacer) *Recorder {
	r := &Recorder{svc: svc, orders: orders}
	r.unsubscribe = bus.SubscribeAll(svc.LogChange)
	return r
}

// CreateOrder runs the wrapped workflow and records its outcome.
func (r *Recorder) CreateOrder(in store.OrderInput) (entities.Order, error) {
	order, err := r.orders.CreateOrder(in)
	if err != nil {
		r.svc.LogOrderRejected(in, err)
		return order, err
	}
	r.svc.LogOrderPlaced(order)
	return order, nil
}

// Close stops recording bus events and waits for pending writes.
func (r *Recorder) Close() {
	r.unsubscribe()
	r.svc.Flush()
}
