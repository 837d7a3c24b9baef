package messaging

import "sync"

// Event describes a change to a user's data. Subscribers receive events for
// their user only.
type Event struct {
	Type   string `json:"type"` // e.g. "ingredient.updated", "shoppinglist.created"
	UserID string `json:"user_id"`
	Entity string `json:"entity"`
	ID     string `json:"id,omitempty"`
}

// Subscription is an explicit handle on a stream of events. The channel is
// closed when the subscription is closed or when the hub drops a subscriber
// that stopped draining its buffer.
type Subscription struct {
	C      chan Event
	userID string
	hub    *Hub
	once   sync.Once
}

// Close detaches the subscription from the hub and closes its channel.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans change events out to per-user subscriptions.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]bool)}
}

// Subscribe registers a new subscription for a user's events.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, 16),
		userID: userID,
		hub:    h,
	}
	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()
	return sub
}

// Publish delivers an event to every subscription of the event's user.
// Delivery never blocks: a subscriber whose buffer is full is dropped.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.userID != ev.UserID {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			h.removeLocked(sub)
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	if h.subs[sub] {
		delete(h.subs, sub)
		sub.once.Do(func() { close(sub.C) })
	}
}
