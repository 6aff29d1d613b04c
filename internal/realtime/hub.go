package realtime

import (
	"log/slog"
	"sync"
)

const clientBuffer = 16

// Message is one push event delivered to a stream client.
type Message struct {
	Event   string
	Payload any
}

type client struct {
	regNumber string
	ch        chan Message
}

// Hub fans push events out to connected stream clients. Slow clients lose
// messages instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[*client]struct{}), logger: logger}
}

// Subscribe registers a listener for regNumber. An empty regNumber only
// receives broadcasts. The returned func unregisters it.
func (h *Hub) Subscribe(regNumber string) (<-chan Message, func()) {
	c := &client{regNumber: regNumber, ch: make(chan Message, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return c.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			close(c.ch)
		})
	}
}

// Publish delivers to every client, or only to target's clients when set.
func (h *Hub) Publish(event string, payload any, target string) {
	msg := Message{Event: event, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if target != "" && c.regNumber != target {
			continue
		}
		select {
		case c.ch <- msg:
		default:
			h.logger.Debug("Dropped push event for slow client", "event", event, "reg_number", c.regNumber)
		}
	}
}

// Clients reports how many streams are connected.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
