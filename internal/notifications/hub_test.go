package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, Event{Type: EventBudgetUpdated})

	select {
	case event := <-ch:
		if event.Type != EventBudgetUpdated {
			t.Fatalf("expected event type %s, got %s", EventBudgetUpdated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubBroadcast проверяет рассылку складского алерта всем подписчикам.
func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	chA, unsubA := hub.Subscribe(uuid.New())
	defer unsubA()
	chB, unsubB := hub.Subscribe(uuid.New())
	defer unsubB()

	hub.Broadcast(Event{Type: EventStockAlert})

	for _, ch := range []<-chan Event{chA, chB} {
		select {
		case event := <-ch:
			if event.Type != EventStockAlert {
				t.Fatalf("expected stock alert, got %s", event.Type)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected broadcast to reach every subscriber")
		}
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}
