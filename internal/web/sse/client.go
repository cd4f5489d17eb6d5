package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is a connected SSE subscriber
type Client struct {
	hub         *Hub
	subscriber  string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client. subscriber names the caller in logs.
func NewClient(hub *Hub, subscriber string) *Client {
	return &Client{
		hub:         hub,
		subscriber:  subscriber,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams a session's events to the caller until it disconnects
// or the session's hub is closed. hello, if set, is written first.
func ServeSSE(w http.ResponseWriter, r *http.Request, manager *HubManager, sessionID model.SessionID, subscriber string, hello []byte) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	var client *Client
	for attempt := 0; attempt < 2 && client == nil; attempt++ {
		hub := manager.GetOrCreateHub(sessionID)
		candidate := NewClient(hub, subscriber)
		// A hub can be closed between lookup and registration
		if hub.Register(candidate) {
			client = candidate
		}
	}
	if client == nil {
		http.Error(w, "Session unavailable", http.StatusServiceUnavailable)
		return
	}
	defer client.hub.Unregister(client)

	if hello != nil {
		_, _ = w.Write(hello)
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// FormatEvent frames a named event for writing directly to a stream
func FormatEvent(eventName, data string) []byte {
	return formatSSEMessage(eventName, data)
}
