// Package notify fans booking updates out to connected guests. Subscriptions
// are in-process only; a guest reconnecting after a restart simply re-reads
// state through the API.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// Event is a lightweight notification about one of the guest's bookings.
type Event struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Registry tracks per-user subscriptions. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[int]chan Event
	nextID int
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[uuid.UUID]map[int]chan Event)}
}

// Subscribe registers a listener for the user's booking events. The returned
// cancel func must be called when the listener goes away.
func (r *Registry) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subs[userID] == nil {
		r.subs[userID] = make(map[int]chan Event)
	}
	id := r.nextID
	r.nextID++
	ch := make(chan Event, subscriberBuffer)
	r.subs[userID][id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if chans, ok := r.subs[userID]; ok {
			if ch, ok := chans[id]; ok {
				delete(chans, id)
				close(ch)
			}
			if len(chans) == 0 {
				delete(r.subs, userID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the user. Slow subscribers
// whose buffers are full miss the event rather than blocking the publisher.
func (r *Registry) Publish(userID uuid.UUID, event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscriptions for the user.
func (r *Registry) SubscriberCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[userID])
}
