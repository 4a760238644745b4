package service

import (
	"sync"
	"time"

	"github.com/MKhiriev/go-wa-relay/models"
)

// IDGenerator produces unique event identifiers.
type IDGenerator interface {
	Generate() string
}

// EventBroadcaster fans lifecycle events out to every current subscriber.
// Delivery is at-most-once: a subscriber whose buffer is full misses the
// event, and subscribers joining later never see earlier events.
type EventBroadcaster struct {
	subscribers map[string]*models.Subscriber
	mu          sync.RWMutex
	bufferSize  int
	ids         IDGenerator
	now         func() time.Time
}

// NewEventBroadcaster returns a broadcaster with per-subscriber buffers of
// bufferSize events (100 when not positive).
func NewEventBroadcaster(bufferSize int, ids IDGenerator) *EventBroadcaster {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBroadcaster{
		subscribers: make(map[string]*models.Subscriber),
		bufferSize:  bufferSize,
		ids:         ids,
		now:         time.Now,
	}
}

// Subscribe registers a listener under subscriberID. Registering the same
// id twice replaces the earlier subscriber, closing its channel.
func (b *EventBroadcaster) Subscribe(subscriberID string) *models.Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[subscriberID]; ok {
		close(old.Events)
	}

	sub := &models.Subscriber{
		ID:     subscriberID,
		Events: make(chan models.LifecycleEvent, b.bufferSize),
	}

	b.subscribers[subscriberID] = sub
	return sub
}

// Unsubscribe removes the listener and closes its channel.
func (b *EventBroadcaster) Unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[subscriberID]; ok {
		close(sub.Events)
		delete(b.subscribers, subscriberID)
	}
}

// Publish stamps event with an id and timestamp, then offers it to every
// subscriber without blocking. The stamped event is returned.
func (b *EventBroadcaster) Publish(event models.LifecycleEvent) models.LifecycleEvent {
	if event.ID == "" && b.ids != nil {
		event.ID = b.ids.Generate()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		select {
		case sub.Events <- event:
		default:
		}
	}

	return event
}

// SubscriberCount returns the number of live listeners.
func (b *EventBroadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
