package realtime

import (
	"context"
	"sync"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/shared/eventbus"
	"recordstore/internal/shared/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher fans change events out to WebSocket subscribers. It subscribes
// to the engine's bus events and delivers per resource key through buffered
// channels; a subscriber whose buffer is full drops events rather than
// blocking the dispatcher or its siblings.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[string]map[string]chan model.ChangeEvent
	buffer int
	closed bool
	logger logger.Logger
}

// NewDispatcher creates a dispatcher delivering through channels of the given
// buffer size and wires it to every engine event type on the bus.
func NewDispatcher(bus eventbus.EventBusInterface, buffer int, log logger.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 10
	}
	d := &Dispatcher{
		subs:   make(map[string]map[string]chan model.ChangeEvent),
		buffer: buffer,
		logger: log.WithComponent("realtime"),
	}
	for _, eventType := range []string{
		eventbus.EventTypeRecordCreated,
		eventbus.EventTypeRecordUpdated,
		eventbus.EventTypeRecordDeleted,
		eventbus.EventTypeCollectionCreated,
		eventbus.EventTypeCollectionDeleted,
	} {
		bus.Subscribe(eventType, d.handle)
	}
	return d
}

// handle receives a bus event and fans it out to the collection's
// subscribers.
func (d *Dispatcher) handle(_ context.Context, event eventbus.Event) error {
	change, ok := event.Data().(model.ChangeEvent)
	if !ok {
		return nil
	}
	key := change.ResourceKey()

	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, ch := range d.subs[key] {
		select {
		case ch <- change:
		default:
			// Slow subscriber: drop, never block.
			d.logger.Warn("Dropping change event for slow subscriber",
				zap.String("resource", key),
				zap.String("subscriberID", id))
		}
	}
	return nil
}

// Subscribe registers interest in one collection's change feed and returns
// the subscriber id plus the delivery channel.
func (d *Dispatcher) Subscribe(resourceKey string) (string, <-chan model.ChangeEvent) {
	id := uuid.NewString()
	ch := make(chan model.ChangeEvent, d.buffer)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(ch)
		return id, ch
	}
	set, ok := d.subs[resourceKey]
	if !ok {
		set = make(map[string]chan model.ChangeEvent)
		d.subs[resourceKey] = set
	}
	set[id] = ch

	d.logger.Debug("Subscriber added",
		zap.String("resource", resourceKey),
		zap.String("subscriberID", id))
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (d *Dispatcher) Unsubscribe(resourceKey, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.subs[resourceKey]
	if !ok {
		return
	}
	if ch, ok := set[id]; ok {
		close(ch)
		delete(set, id)
	}
	if len(set) == 0 {
		delete(d.subs, resourceKey)
	}
}

// SubscriberCount reports the subscribers of one resource key.
func (d *Dispatcher) SubscriberCount(resourceKey string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[resourceKey])
}

// Close drains every subscription; used during graceful shutdown.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for key, set := range d.subs {
		for id, ch := range set {
			close(ch)
			delete(set, id)
		}
		delete(d.subs, key)
	}
}
