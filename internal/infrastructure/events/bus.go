package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"collabcore/internal/core/domain"
)

// Bus is the in-process event fan-out. Subscribers get their own buffered
// channel; a subscriber that falls behind loses events rather than
// blocking publishers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan *domain.Event
	nextID      int
	closed      bool

	logger *zap.SugaredLogger
}

func NewBus(logger *zap.SugaredLogger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan *domain.Event),
		logger:      logger,
	}
}

// Publish delivers the event to every live subscriber. Never blocks.
func (b *Bus) Publish(ctx context.Context, event *domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warnw("subscriber lagging, event dropped",
				"subscriber_id", id,
				"event_type", event.Type,
			)
		}
	}
}

// Subscribe registers an observer and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe(buffer int) (<-chan *domain.Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan *domain.Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, exists := b.subscribers[id]; exists {
				delete(b.subscribers, id)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Close tears down all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
