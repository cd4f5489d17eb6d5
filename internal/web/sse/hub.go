package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Hub fans events out to the SSE clients watching a single session
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	mu        sync.RWMutex
	logger    *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a session
func NewHub(sessionID model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID:  sessionID,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("session_id", string(sessionID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("subscriber", client.subscriber),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("sse client unregistered",
					slog.String("subscriber", client.subscriber),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("sse messages dropped - client buffers full",
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			h.flushPending()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// flushPending delivers messages queued before the hub was closed.
// Callers hold h.mu.
func (h *Hub) flushPending() {
	for {
		select {
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
				}
			}
		default:
			return
		}
	}
}

// Register adds a client to the hub. It reports false if the hub has
// already stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a raw message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub and disconnects its clients
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE frame. Each line of data gets its own
// "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and a trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns one hub per watched session
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a session, creating one if needed
func (m *HubManager) GetOrCreateHub(sessionID model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[sessionID]; ok {
		return hub
	}

	hub := NewHub(sessionID, m.logger)
	m.hubs[sessionID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a session, or nil if nobody is watching
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[sessionID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[sessionID]; ok {
		hub.Close()
		delete(m.hubs, sessionID)
		m.logger.Info("sse hub removed", slog.String("session_id", string(sessionID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// Close stops every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
