package messaging

import "testing"

func TestPublishReachesMatchingSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer sub.Close()

	hub.Publish(Event{Type: "ingredient.updated", UserID: "user-1", Entity: "ingredient", ID: "i1"})

	select {
	case ev := <-sub.C:
		if ev.Type != "ingredient.updated" || ev.ID != "i1" {
			t.Errorf("Unexpected event: %+v", ev)
		}
	default:
		t.Fatal("Expected an event to be delivered")
	}
}

func TestPublishScopedToUser(t *testing.T) {
	hub := NewHub()
	mine := hub.Subscribe("user-1")
	theirs := hub.Subscribe("user-2")
	defer mine.Close()
	defer theirs.Close()

	hub.Publish(Event{Type: "recipe.created", UserID: "user-1", Entity: "recipe"})

	if len(mine.C) != 1 {
		t.Errorf("Expected 1 event for user-1, got %d", len(mine.C))
	}
	if len(theirs.C) != 0 {
		t.Errorf("Expected no events for user-2, got %d", len(theirs.C))
	}
}

func TestCloseRemovesSubscription(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")
	sub.Close()

	if hub.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after close, got %d", hub.SubscriberCount())
	}

	// Channel must be closed.
	if _, ok := <-sub.C; ok {
		t.Error("Expected channel to be closed")
	}

	// Closing twice is safe.
	sub.Close()
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("user-1")

	// Overflow the buffer without draining.
	for i := 0; i < 32; i++ {
		hub.Publish(Event{Type: "recipe.updated", UserID: "user-1", Entity: "recipe"})
	}

	if hub.SubscriberCount() != 0 {
		t.Errorf("Expected the blocked subscriber to be dropped, got %d live", hub.SubscriberCount())
	}
	_ = sub
}
