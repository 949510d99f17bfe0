package authstate

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub owns the process-wide authenticated flag and broadcasts it to any
// number of subscribers. Only the session lifecycle controller publishes;
// everything else observes.
//
// Delivery is fire-and-forget per subscriber: a slow subscriber has stale
// values dropped in its favor rather than blocking the rest. Subscribers
// must tolerate receiving the same value repeatedly.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	current bool
	closed  bool
	subs    map[string]chan bool
}

// NewHub creates a hub with the flag initially false.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[string]chan bool),
	}
}

// Current returns the latest published flag.
func (h *Hub) Current() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a listener and immediately replays the current value
// on the returned channel. The cancel function removes the subscription and
// closes the channel.
func (h *Hub) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := uuid.NewString()
	h.subs[id] = ch
	ch <- h.current
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish records value as current and fans it out to all subscribers.
// Re-publishing an unchanged value is deliberate: consumers re-render off
// every evaluation.
func (h *Hub) Publish(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.current = value

	for id, sub := range h.subs {
		select {
		case sub <- value:
		default:
			// Subscriber still holds an undelivered value; swap it for
			// the newest one so it never observes stale state.
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- value:
			default:
				h.logger.Debug("auth state dropped for subscriber", zap.String("subscriber", id))
			}
		}
	}
}

// Close removes every subscription and closes their channels. Further
// publishes are no-ops and new subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub)
	}
}
