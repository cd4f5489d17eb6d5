package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
)

// Broadcaster publishes session events to SSE subscribers
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish encodes the event and sends it to the session's hub, if anyone
// is listening. A deleted session's hub is closed after the event goes out.
func (b *Broadcaster) Publish(sessionID model.SessionID, event model.Event) {
	hub := b.hubManager.GetHub(sessionID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(response.EventFromModel(event))
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("session_id", string(sessionID)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEvent(string(event.Type), string(data))

	if event.Type == model.EventSessionDeleted {
		b.hubManager.RemoveHub(sessionID)
	}
}
