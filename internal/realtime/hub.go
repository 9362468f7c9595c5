package realtime

import (
	"sync"

	"github.com/oduya/pendo/internal/db"
)

// DefaultBuffer is the per-subscription event buffer. A viewer that
// falls this far behind is cancelled rather than blocking senders.
const DefaultBuffer = 16

// Hub fans out newly inserted messages to viewers subscribed to a match
// scope. Delivery is in publish order within one scope; there is no
// cross-scope ordering guarantee.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{} // match id -> subscribers
}

// Subscription is one viewer's registration on a match scope.
// Events arrive on C until Cancel is called or the subscriber is
// dropped for falling behind; C is closed in either case.
type Subscription struct {
	hub     *Hub
	matchID string
	ch      chan db.Message
	once    sync.Once
}

// C returns the ordered event stream for this subscription.
func (s *Subscription) C() <-chan db.Message {
	return s.ch
}

// Cancel removes the subscription and closes its channel. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers a viewer on the given match scope.
// buffer <= 0 uses DefaultBuffer.
func (h *Hub) Subscribe(matchID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{
		hub:     h,
		matchID: matchID,
		ch:      make(chan db.Message, buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*Subscription]struct{})
	}
	h.subs[matchID][sub] = struct{}{}
	return sub
}

// Publish delivers msg to every subscriber of the match scope.
// Never blocks: a subscriber with a full buffer is cancelled.
func (h *Hub) Publish(matchID string, msg db.Message) {
	h.mu.RLock()
	var slow []*Subscription
	for sub := range h.subs[matchID] {
		select {
		case sub.ch <- msg:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		sub.Cancel()
	}
}

// Subscribers reports how many viewers are registered on a match scope.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.matchID]
	if set == nil {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.matchID)
	}
}
