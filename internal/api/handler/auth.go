package handler

import (
	"net/http"

	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/api/request"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
)

// AuthHandler handles host and player authentication
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterAdmin handles POST /api/v1/admins/register
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterAdminRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	grant, err := h.authService.RegisterAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromGrant(grant))
}

// LoginAdmin handles POST /api/v1/admins/login
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("username and password are required"))
		return
	}

	grant, err := h.authService.LoginAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromGrant(grant))
}

// LoginPlayer handles POST /api/v1/players/login
func (h *AuthHandler) LoginPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.PlayerLoginRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	if req.SessionID == "" || req.AccessCode == "" {
		WriteError(w, NewInvalidRequestError("session_id and access_code are required"))
		return
	}

	grant, err := h.authService.LoginPlayer(r.Context(), model.SessionID(req.SessionID), req.AccessCode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromGrant(grant))
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.IdentityFromAuth(*identity))
}

// Logout handles POST /api/v1/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if grant := middleware.GetGrant(r.Context()); grant != nil {
		h.authService.InvalidateToken(grant.Token)
	}
	response.NoContent(w)
}
