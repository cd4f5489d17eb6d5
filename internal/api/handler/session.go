package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/api/request"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
)

// SessionHandler handles session lifecycle and gameplay endpoints
type SessionHandler struct {
	coordinator *session.Coordinator
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(coordinator *session.Coordinator, authService *auth.Service) *SessionHandler {
	return &SessionHandler{
		coordinator: coordinator,
		authService: authService,
	}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	summaries, err := h.coordinator.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.SessionList{Sessions: make([]response.SessionSummary, 0, len(summaries))}
	for _, s := range summaries {
		resp.Sessions = append(resp.Sessions, response.SessionSummaryFromModel(s))
	}
	response.JSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	var req request.CreateSessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	strategy, err := resolveStrategy(req.Strategy, req.GameType)
	if err != nil {
		WriteError(w, err)
		return
	}

	var scheduledAt time.Time
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}

	s, err := h.coordinator.CreateSession(r.Context(), name, scheduledAt, strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(s, true))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, identity.IsAdmin()))
}

// Update handles PATCH /api/v1/sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	var req request.UpdateSessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	var scheduledAt time.Time
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}

	s, err := h.coordinator.UpdateDetails(r.Context(), sessionIDVar(r), strings.TrimSpace(req.Name), scheduledAt)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, true))
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	id := sessionIDVar(r)
	if err := h.coordinator.DeleteSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	h.authService.InvalidateSession(id)

	response.NoContent(w)
}

// Draw handles POST /api/v1/sessions/{id}/draw
func (h *SessionHandler) Draw(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	ball, s, err := h.coordinator.DrawBall(r.Context(), sessionIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DrawResponse{
		Ball:    ball,
		Session: response.SessionFromModel(s, true),
	})
}

// Reset handles POST /api/v1/sessions/{id}/reset
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.coordinator.Reset(r.Context(), sessionIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, true))
}

// SetStrategy handles PUT /api/v1/sessions/{id}/strategy
func (h *SessionHandler) SetStrategy(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireAdmin(middleware.GetIdentity(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	var req request.SetStrategyRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Strategy == "" && req.GameType == nil {
		WriteError(w, NewInvalidRequestError("strategy or game_type is required"))
		return
	}

	strategy, err := resolveStrategy(req.Strategy, req.GameType)
	if err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.coordinator.SetStrategy(r.Context(), sessionIDVar(r), strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(s, true))
}

// Claim handles POST /api/v1/sessions/{id}/bingo
// Players claim for themselves; hosts name the player in the body.
func (h *SessionHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id := sessionIDVar(r)
	identity := middleware.GetIdentity(r.Context())
	if err := auth.RequireMember(identity, id); err != nil {
		WriteError(w, err)
		return
	}

	var req request.ClaimRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	playerID, err := claimant(identity, model.PlayerID(req.PlayerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	won, s, err := h.coordinator.ClaimBingo(r.Context(), id, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClaimResponse{
		Won:     won,
		Session: response.SessionFromModel(s, identity.IsAdmin()),
	})
}

// claimant resolves whose card a claim is checked against
func claimant(identity *auth.Identity, requested model.PlayerID) (model.PlayerID, error) {
	if identity.IsAdmin() {
		if requested == "" {
			return "", NewInvalidRequestError("player_id is required")
		}
		return requested, nil
	}
	if requested != "" && requested != identity.PlayerID {
		return "", model.ErrForbidden
	}
	return identity.PlayerID, nil
}
