package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/bingogame-go/internal/api"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/card"
	"github.com/mcoot/bingogame-go/internal/services/game"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/storage"
	"github.com/mcoot/bingogame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/bingogame-go/internal/storage/redis"
	"github.com/mcoot/bingogame-go/internal/web/sse"
	"github.com/mcoot/bingogame-go/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	Cards       *card.Factory
	Engine      *game.Engine
	Coordinator *session.Coordinator
	AuthService *auth.Service

	// Transports
	HubManager     *sse.HubManager
	SSEBroadcaster *sse.Broadcaster
	WSHub          *ws.Hub
	WSHandler      *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// SessionConfig tunes the session coordinator (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Fill in defaults for anything left unset
	authCfg := cfg.AuthConfig
	if authCfg.TokenDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	sessionCfg := cfg.SessionConfig
	if sessionCfg.IdleTimeout == 0 {
		sessionCfg = session.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), authCfg, sessionCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	sseBroadcaster := sse.NewBroadcaster(hubManager, logger)
	wsHub := ws.NewHub(logger)

	cards := card.New(rnd)
	engine := game.NewEngine(cards, rnd, clk, logger.With(slog.String("component", "engine")))
	coordinator := session.New(
		store,
		engine,
		session.Fanout{sseBroadcaster, wsHub},
		clk,
		logger.With(slog.String("component", "coordinator")),
		sessionCfg,
	)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Logger:         logger,
		Cards:          cards,
		Engine:         engine,
		Coordinator:    coordinator,
		AuthService:    auth.New(store, clk, authCfg),
		HubManager:     hubManager,
		SSEBroadcaster: sseBroadcaster,
		WSHub:          wsHub,
		WSHandler:      ws.NewHandler(wsHub, coordinator, logger),
	}
}

// RouterConfig returns the API router configuration for this app
func (a *App) RouterConfig() api.RouterConfig {
	return api.RouterConfig{
		Logger:      a.Logger,
		Clock:       a.Clock,
		Storage:     a.Storage,
		AuthService: a.AuthService,
		Coordinator: a.Coordinator,
		HubManager:  a.HubManager,
		WSHandler:   a.WSHandler,
	}
}

// Close stops the coordinator, disconnects subscribers and releases the
// storage backend
func (a *App) Close() error {
	a.Coordinator.Close()
	a.WSHub.Close()
	a.HubManager.Close()

	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
