// Package events is the change notification bus of the data layer.
//
// Every successful persist of a collection broadcasts the full post-mutation
// snapshot to the subscribers of that collection, synchronously and in
// subscription order. There is no buffering or batching.
//
// # Usage
//
//	bus := events.NewBus()
//	unsubscribe := bus.Books.Subscribe(func(books []entities.Book) {
//		log.Printf("catalog now has %d books", len(books))
//	})
//	defer unsubscribe()
package events

import (
	"log"
	"sync"

	"github.com/bookhaven/storefront/internal/entities"
)

type Topic string

const (
	TopicBooks  Topic = "books-changed"
	TopicUsers  Topic = "users-changed"
	TopicOrders Topic = "orders-changed"
)

// Topics lists every topic the bus publishes.
var Topics = []Topic{TopicBooks, TopicUsers, TopicOrders}

// Event is the topic-agnostic form of a change notification.
type Event struct {
	Topic    Topic
	Count    int
	Snapshot any // []entities.Book, []entities.User or []entities.Order
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// registry is an ordered subscriber list shared by Emitter and Bus.
type registry[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

func (r *registry[T]) add(fn func(T)) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber[T]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *registry[T]) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *registry[T]) snapshot() []subscriber[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]subscriber[T], len(r.subs))
	copy(out, r.subs)
	return out
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// deliver calls every subscriber in order. Subscribers registered or removed
// during delivery take effect from the next event.
func (r *registry[T]) deliver(topic Topic, value T) {
	for _, s := range r.snapshot() {
		call(topic, s.fn, value)
	}
}

func call[T any](topic Topic, fn func(T), value T) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[EVENTS] subscriber of %s panicked: %v", topic, rec)
		}
	}()
	fn(value)
}

// Emitter broadcasts snapshots of one collection.
type Emitter[T any] struct {
	topic   Topic
	subs    registry[[]T]
	forward func(Event)
}

// NewEmitter creates a standalone emitter for topic.
func NewEmitter[T any](topic Topic) *Emitter[T] {
	return &Emitter[T]{topic: topic}
}

// Topic returns the name the emitter publishes under.
func (e *Emitter[T]) Topic() Topic {
	return e.topic
}

// Subscribe registers fn and returns a handle that removes it. Calling the
// handle more than once is a no-op.
func (e *Emitter[T]) Subscribe(fn func([]T)) func() {
	return e.subs.add(fn)
}

// Subscribers returns the number of registered subscribers.
func (e *Emitter[T]) Subscribers() int {
	return e.subs.len()
}

// Emit delivers snapshot to every subscriber. Subscribers must treat the
// slice as read-only.
func (e *Emitter[T]) Emit(snapshot []T) {
	e.subs.deliver(e.topic, snapshot)
	if e.forward != nil {
		e.forward(Event{Topic: e.topic, Count: len(snapshot), Snapshot: snapshot})
	}
}

// Bus groups the emitters of the three repository collections.
type Bus struct {
	Books  *Emitter[entities.Book]
	Users  *Emitter[entities.User]
	Orders *Emitter[entities.Order]

	all registry[Event]
}

func NewBus() *Bus {
	b := &Bus{
		Books:  NewEmitter[entities.Book](TopicBooks),
		Users:  NewEmitter[entities.User](TopicUsers),
		Orders: NewEmitter[entities.Order](TopicOrders),
	}
	b.Books.forward = b.publish
	b.Users.forward = b.publish
	b.Orders.forward = b.publish
	return b
}

// SubscribeAll registers fn for every topic. Topic subscribers of an event are
// called before the SubscribeAll handlers.
func (b *Bus) SubscribeAll(fn func(Event)) func() {
	return b.all.add(fn)
}

func (b *Bus) publish(ev Event) {
	b.all.deliver(ev.Topic, ev)
}
