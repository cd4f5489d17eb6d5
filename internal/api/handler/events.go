package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/web/sse"
	"github.com/mcoot/bingogame-go/internal/web/ws"
)

// EventsHandler streams session events over SSE and WebSocket
type EventsHandler struct {
	coordinator *session.Coordinator
	hubManager  *sse.HubManager
	ws          *ws.Handler
	clock       clock.Clock
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(coordinator *session.Coordinator, hubManager *sse.HubManager, wsHandler *ws.Handler, clock clock.Clock) *EventsHandler {
	return &EventsHandler{
		coordinator: coordinator,
		hubManager:  hubManager,
		ws:          wsHandler,
		clock:       clock,
	}
}

// Stream handles GET /api/v1/sessions/{id}/events
// The first frame is a "connected" event carrying the current snapshot.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := sessionIDVar(r)
	identity := middleware.GetIdentity(r.Context())
	if err := auth.RequireMember(identity, id); err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.coordinator.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	hello, err := json.Marshal(response.Event{
		Event:     "connected",
		SessionID: string(id),
		Timestamp: h.clock.Now(),
		Data:      response.SessionFromModel(s, false),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	sse.ServeSSE(w, r, h.hubManager, id, subscriberName(identity), sse.FormatEvent("connected", string(hello)))
}

// Socket handles GET /api/v1/sessions/{id}/ws
func (h *EventsHandler) Socket(w http.ResponseWriter, r *http.Request) {
	id := sessionIDVar(r)
	identity := middleware.GetIdentity(r.Context())
	if err := auth.RequireMember(identity, id); err != nil {
		WriteError(w, err)
		return
	}

	// Fail before upgrading so the client gets a proper status
	if _, err := h.coordinator.GetSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	h.ws.ServeWS(w, r, id, *identity)
}

func subscriberName(identity *auth.Identity) string {
	if identity.IsAdmin() {
		return "admin:" + string(identity.AdminID)
	}
	return "player:" + string(identity.PlayerID)
}
