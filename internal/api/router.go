package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/bingogame-go/internal/api/handler"
	"github.com/mcoot/bingogame-go/internal/api/middleware"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/storage"
	"github.com/mcoot/bingogame-go/internal/web/sse"
	"github.com/mcoot/bingogame-go/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Clock       clock.Clock
	Storage     storage.Storage
	AuthService *auth.Service
	Coordinator *session.Coordinator
	HubManager  *sse.HubManager
	WSHandler   *ws.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	sessionHandler := handler.NewSessionHandler(cfg.Coordinator, cfg.AuthService)
	playerHandler := handler.NewPlayerHandler(cfg.Coordinator, cfg.AuthService)
	eventsHandler := handler.NewEventsHandler(cfg.Coordinator, cfg.HubManager, cfg.WSHandler, cfg.Clock)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Authentication (no token required)
	api.HandleFunc("/admins/register", authHandler.RegisterAdmin).Methods(http.MethodPost)
	api.HandleFunc("/admins/login", authHandler.LoginAdmin).Methods(http.MethodPost)
	api.HandleFunc("/players/login", authHandler.LoginPlayer).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Storage)).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Session routes; handlers decide between host-only and member access
	sessions := protected.PathPrefix("/sessions").Subrouter()
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Update).Methods(http.MethodPatch)
	sessions.HandleFunc("/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/draw", sessionHandler.Draw).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/reset", sessionHandler.Reset).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/strategy", sessionHandler.SetStrategy).Methods(http.MethodPut)
	sessions.HandleFunc("/{id}/bingo", sessionHandler.Claim).Methods(http.MethodPost)

	// Player routes
	sessions.HandleFunc("/{id}/players", playerHandler.Add).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/players/{player_id}", playerHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/players/{player_id}", playerHandler.Remove).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/players/{player_id}/card", playerHandler.ChangeCard).Methods(http.MethodPost)

	// Event streams
	sessions.HandleFunc("/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/ws", eventsHandler.Socket).Methods(http.MethodGet)

	return r
}

func healthHandler(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pinger, ok := store.(storage.Pinger)
		if !ok {
			response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unreachable"})
			return
		}
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
	}
}
