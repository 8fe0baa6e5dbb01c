package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/devhub/backend/internal/metrics"
	"github.com/google/uuid"
)

// subscriptionBuffer bounds the per-connection send queue. A subscriber that
// falls this far behind starts losing events; the persisted notification
// history remains the source of truth.
const subscriptionBuffer = 16

// Event is a single frame pushed to a subscribed client
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Subscription is one client connection's membership in its user channel
type Subscription struct {
	ID     string
	UserID uint
	C      chan []byte
}

// Hub is the per-recipient broadcast registry. One channel exists per user
// ID; a user may hold several subscriptions (multiple tabs/devices), and a
// publish reaches all of them. Publishing to a user with no subscriptions is
// a no-op.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[*Subscription]struct{}
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*Subscription]struct{})}
}

// Subscribe joins the channel addressed by userID and returns the subscription
func (h *Hub) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		C:      make(chan []byte, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	metrics.RealtimeConnections.Inc()
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Safe to call
// once per subscription; the disconnect path must always reach it.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.UserID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.UserID)
	}
	close(sub.C)
	metrics.RealtimeConnections.Dec()
}

// Publish fans an event out to every subscription of userID. Delivery is
// fire-and-forget: a full subscriber queue drops the event rather than block
// the caller. Returns the number of subscriptions the event was queued for.
func (h *Hub) Publish(userID uint, event string, data interface{}) int {
	payload, err := json.Marshal(Event{Name: event, Data: data})
	if err != nil {
		log.Printf("realtime: failed to marshal %q event: %v", event, err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[userID] {
		select {
		case sub.C <- payload:
			delivered++
		default:
			log.Printf("realtime: subscriber %s for user %d is not draining, dropping %q event", sub.ID, userID, event)
		}
	}
	if delivered > 0 {
		metrics.NotificationsPublished.Inc()
	}
	return delivered
}

// SubscriberCount reports how many subscriptions are joined to a user channel
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
