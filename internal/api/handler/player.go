package handler

import (
	"net/http"
	"strings"

	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/api/request"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
)

// PlayerHandler handles session membership endpoints
type PlayerHandler struct {
	coordinator *session.Coordinator
	authService *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(coordinator *session.Coordinator, authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		coordinator: coordinator,
		authService: authService,
	}
}

// Add handles POST /api/v1/sessions/{id}/players
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	var req request.AddPlayerRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	player, s, err := h.coordinator.AddPlayer(r.Context(), sessionIDVar(r), name, strings.TrimSpace(req.Contact))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerResponse{
		Player:  response.PlayerFromModel(player, true),
		Session: response.SessionFromModel(s, true),
	})
}

// Get handles GET /api/v1/sessions/{id}/players/{player_id}
// Players may only look themselves up.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := sessionIDVar(r)
	playerID := playerIDVar(r)
	identity := middleware.GetIdentity(r.Context())
	if err := auth.RequireMember(identity, id); err != nil {
		WriteError(w, err)
		return
	}
	if !identity.IsAdmin() && identity.PlayerID != playerID {
		WriteError(w, model.ErrForbidden)
		return
	}

	player, err := h.coordinator.GetPlayer(r.Context(), id, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player, true))
}

// Remove handles DELETE /api/v1/sessions/{id}/players/{player_id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	playerID := playerIDVar(r)
	s, err := h.coordinator.RemovePlayer(r.Context(), sessionIDVar(r), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.authService.InvalidatePlayer(playerID)

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, true))
}

// ChangeCard handles POST /api/v1/sessions/{id}/players/{player_id}/card
func (h *PlayerHandler) ChangeCard(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	player, s, err := h.coordinator.ChangeCard(r.Context(), sessionIDVar(r), playerIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerResponse{
		Player:  response.PlayerFromModel(player, true),
		Session: response.SessionFromModel(s, true),
	})
}
