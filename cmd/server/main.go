package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/bingogame-go/internal/api"
	"github.com/mcoot/bingogame-go/internal/factory"
	redisstorage "github.com/mcoot/bingogame-go/internal/storage/redis"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				logger.Error("invalid SESSION_TTL", slog.String("error", err.Error()))
				os.Exit(1)
			}
			redisCfg.SessionTTL = d
		}
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(api.NewRouter(app.RouterConfig()), serverConfig, logger)
	server.OnShutdown(app.HubManager.Close)
	server.OnShutdown(app.WSHub.Close)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Expired tokens are dropped periodically
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.AuthService.CleanExpiredTokens()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			_ = app.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func logLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
