package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/api"
	"github.com/rubyruby/relay/internal/config"
	"github.com/rubyruby/relay/internal/db"
	"github.com/rubyruby/relay/internal/middleware"
	"github.com/rubyruby/relay/internal/observ"
	"github.com/rubyruby/relay/internal/presence"
	"github.com/rubyruby/relay/internal/relay"
	"github.com/rubyruby/relay/internal/repository/postgres"
	"github.com/rubyruby/relay/internal/ws"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no parent deadline; Background is the right root here.
	// A failed store init is the one fatal error in the system — the
	// relay cannot run without durable persistence.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	// Presence is best-effort: without Redis the relay runs fine, the
	// online endpoint just reports nobody.
	tracker, err := presence.New(cfg.RedisURL, logger)
	if err != nil {
		logger.Warn("presence disabled", zap.Error(err))
		tracker = presence.Disabled(logger)
	} else if err := tracker.Reset(context.Background()); err != nil {
		logger.Warn("presence reset failed, continuing without redis", zap.Error(err))
		tracker.Close()
		tracker = presence.Disabled(logger)
	}
	defer tracker.Close()

	pool := database.Pool()
	messageRepo := postgres.NewMessageStore(pool)
	userRepo := postgres.NewUserStore(pool)
	groupRepo := postgres.NewGroupStore(pool)
	contactRepo := postgres.NewContactStore(pool)

	// The registry is the only process-wide mutable state outside the
	// store: empty at start, dropped wholesale on shutdown.
	registry := relay.NewRegistry()
	defer registry.Shutdown()

	router := relay.NewRouter(messageRepo, groupRepo, registry, logger)

	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	authHandler := api.NewAuthHandler(userRepo, cfg.JWTSecret, tokenTTL, logger)
	contactHandler := api.NewContactHandler(contactRepo, userRepo, logger)
	groupHandler := api.NewGroupHandler(groupRepo, logger)
	messageHandler := api.NewMessageHandler(messageRepo, logger)
	presenceHandler := api.NewPresenceHandler(tracker, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Recovery())

	srv.GET("/v1/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	srv.POST("/v1/auth/register", authHandler.Register)
	srv.POST("/v1/auth/login", authHandler.Login)

	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	v1.POST("/contacts", contactHandler.Add)
	v1.GET("/contacts", contactHandler.List)
	v1.POST("/groups", groupHandler.Create)
	v1.POST("/groups/:id/join", groupHandler.Join)
	v1.GET("/groups", groupHandler.List)
	v1.GET("/groups/:id/members", groupHandler.Members)
	v1.GET("/messages/:target_type/:target", messageHandler.History)
	v1.GET("/presence/online", presenceHandler.Online)

	// The WS route authenticates via its path token, not the middleware:
	// browsers cannot set headers on websocket dials.
	srv.GET("/ws/:token", ws.Serve(registry, router, tracker, cfg.JWTSecret, logger))

	logger.Info("starting relay",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	if err := srv.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
