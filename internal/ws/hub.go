package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
)

// Hub manages viewer connections and publishes messages to all of them.
type Hub struct {
	clients    map[*Client]bool
	registry   *Registry
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	encoder    *Encoder
	upgrader   *websocket.Upgrader
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a new Hub. checkOrigin decides which browser origins may
// connect; nil allows all.
func NewHub(checkOrigin func(r *http.Request) bool, logger *zap.Logger) (*Hub, error) {
	enc, err := NewEncoder()
	if err != nil {
		return nil, err
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		registry:   NewRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		encoder:    enc,
		upgrader:   newUpgrader(checkOrigin),
		logger:     logger,
	}, nil
}

// Run processes hub events. Call this in a goroutine.
// Returns when context is cancelled, after closing every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down", zap.Int("clients", h.registry.Len()))
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.registry.Add(client.connID)
			h.logger.Info("viewer connected",
				zap.String("connID", client.connID),
				zap.String("protocol", string(client.protocol)),
				zap.Int("total", h.registry.Len()),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.registry.Remove(client.connID)
			h.logger.Info("viewer disconnected",
				zap.String("connID", client.connID),
				zap.Int("remaining", h.registry.Len()),
			)
		}
	}
}

// shutdown closes all client send channels, which makes each write pump
// send a close frame and drop its connection.
func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.registry.Remove(client.connID)
		delete(h.clients, client)
		close(client.send)
	}
}

// Close releases encoder resources. Call after Run and all publishers have returned.
func (h *Hub) Close() {
	h.encoder.Close()
}

// IsEmpty reports whether no viewers are connected.
func (h *Hub) IsEmpty() bool {
	return h.registry.IsEmpty()
}

// SubscriberCount returns the number of connected viewers.
func (h *Hub) SubscriberCount() int {
	return h.registry.Len()
}

// Publish sends msg to every connected viewer in its negotiated protocol.
// The message is fully encoded before anything is sent; encoding failures
// drop the message for everyone.
func (h *Hub) Publish(msg ingest.Message) {
	h.mu.RLock()
	clientList := make([]*Client, 0, len(h.clients))
	protocols := make(map[Protocol]bool)
	for client := range h.clients {
		clientList = append(clientList, client)
		protocols[client.protocol] = true
	}
	h.mu.RUnlock()

	if len(clientList) == 0 {
		return
	}

	frames, err := h.encoder.Encode(msg, protocols)
	if err != nil {
		h.logger.Error("failed to encode message",
			zap.String("event", msg.Event),
			zap.Error(err),
		)
		return
	}

	// Hold the read lock while sending so shutdown cannot close a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range clientList {
		if !h.clients[client] {
			continue
		}
		select {
		case client.send <- frames[client.protocol]:
		default:
			// Buffer full, schedule disconnect
			h.logger.Debug("viewer send buffer full, disconnecting",
				zap.String("connID", client.connID),
			)
			go h.drop(client)
		}
	}
}

// sendTo queues msg for a single client.
func (h *Hub) sendTo(client *Client, msg ingest.Message) {
	frames, err := h.encoder.Encode(msg, map[Protocol]bool{client.protocol: true})
	if err != nil {
		h.logger.Error("failed to encode message",
			zap.String("event", msg.Event),
			zap.Error(err),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- frames[client.protocol]:
	default:
		go h.drop(client)
	}
}

// drop asks Run to unregister client. It gives up once the hub has stopped.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// add asks Run to register client. Returns false once the hub has stopped.
func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}
