package stream

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/muurk/rtuscope/internal/framing"
	"github.com/muurk/rtuscope/internal/logging"
	"go.uber.org/zap"
)

// DefaultClientBuffer is the number of messages queued per client before
// messages are dropped for that client
const DefaultClientBuffer = 256

type client struct {
	remoteAddr string
	send       chan []byte
}

// Hub fans segments out to connected stream clients. Emit never blocks the
// monitor: a client whose queue is full misses the message.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	buffer  int
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub with the default per-client queue size
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		buffer:  DefaultClientBuffer,
	}
}

// Emit implements framing.Sink
func (h *Hub) Emit(seg framing.Segment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	payload, err := json.Marshal(NewMessage(seg))
	if err != nil {
		logging.Error("Failed to encode segment", zap.Error(err))
		return
	}

	for c := range h.clients {
		select {
		case c.send <- payload:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
			logging.Debug("Client queue full, dropping segment",
				zap.String("remote_addr", c.remoteAddr),
			)
		}
	}
}

func (h *Hub) register(remoteAddr string) *client {
	c := &client{remoteAddr: remoteAddr, send: make(chan []byte, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return c
	}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Sent returns the number of messages queued to clients
func (h *Hub) Sent() uint64 { return h.sent.Load() }

// Dropped returns the number of messages dropped for slow clients
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects every client. Later registrations are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
