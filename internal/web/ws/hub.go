package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
)

// Hub tracks the WebSocket clients of every session and fans published
// events out to them
type Hub struct {
	mu     sync.Mutex
	rooms  map[model.SessionID]map[*Client]struct{}
	logger *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.SessionID]map[*Client]struct{}),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Publish sends an event to every client in the session's room. Clients
// too slow to keep up are disconnected. A session-deleted event closes
// the room once delivered.
func (h *Hub) Publish(sessionID model.SessionID, event model.Event) {
	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		h.logger.Error("ws failed to encode event",
			slog.String("session_id", string(sessionID)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[sessionID]
	for client := range room {
		if !client.enqueue(data) {
			h.logger.Warn("ws client too slow, disconnecting",
				slog.String("session_id", string(sessionID)),
				slog.String("connection_id", client.id))
			delete(room, client)
			client.close()
		}
	}

	if event.Type == model.EventSessionDeleted {
		for client := range room {
			client.close()
		}
		delete(h.rooms, sessionID)
	} else if len(room) == 0 {
		delete(h.rooms, sessionID)
	}
}

// ClientCount returns the number of clients connected to a session
func (h *Hub) ClientCount(sessionID model.SessionID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[sessionID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.rooms {
		for client := range room {
			client.close()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.sessionID] = room
	}
	room[c] = struct{}{}
	count := len(room)
	h.mu.Unlock()

	h.logger.Info("ws client joined",
		slog.String("session_id", string(c.sessionID)),
		slog.String("connection_id", c.id),
		slog.Int("total_clients", count))
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.sessionID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.sessionID)
		}
	}
	h.mu.Unlock()
	c.close()
}
