package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"collabcore/internal/core/domain"
)

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t).Sugar())
	defer bus.Close()

	first, unsubFirst := bus.Subscribe(4)
	defer unsubFirst()
	second, unsubSecond := bus.Subscribe(4)
	defer unsubSecond()

	bus.Publish(context.Background(), &domain.Event{Type: domain.EventVoteCast, EntityID: "tool-1"})

	for _, ch := range []<-chan *domain.Event{first, second} {
		select {
		case event := <-ch:
			assert.Equal(t, domain.EventVoteCast, event.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t).Sugar())
	defer bus.Close()

	ch, unsub := bus.Subscribe(1)
	defer unsub()

	// Second publish overflows the buffer; the call must still return.
	bus.Publish(context.Background(), &domain.Event{Type: domain.EventBoardOperation})
	bus.Publish(context.Background(), &domain.Event{Type: domain.EventBoardReset})

	event := <-ch
	assert.Equal(t, domain.EventBoardOperation, event.Type)
	select {
	case <-ch:
		t.Fatal("overflow event should have been dropped")
	default:
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t).Sugar())
	defer bus.Close()

	ch, unsub := bus.Subscribe(1)
	unsub()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(context.Background(), &domain.Event{Type: domain.EventVoteCast})
}

func TestBus_CloseTearsDownSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t).Sugar())

	ch, _ := bus.Subscribe(1)
	bus.Close()

	_, open := <-ch
	require.False(t, open)

	// Subscribing after close yields a closed channel.
	late, _ := bus.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
