// StockFlow - inventory dashboard API with chat and voice assistants.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/stockflow/internal/agent"
	"github.com/ashureev/stockflow/internal/api"
	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/config"
	"github.com/ashureev/stockflow/internal/events"
	"github.com/ashureev/stockflow/internal/identity"
	"github.com/ashureev/stockflow/internal/middleware"
	"github.com/ashureev/stockflow/internal/session"
	"github.com/ashureev/stockflow/internal/store"
	"github.com/ashureev/stockflow/internal/voicews"
	"github.com/ashureev/stockflow/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath, store.WithPasswordCost(cfg.PasswordCost))
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if cfg.SeedDemoData {
		if err := repo.Seed(context.Background()); err != nil {
			slog.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	assistantCfg := assistant.DefaultConfig()
	assistantCfg.HistoryLimit = cfg.Assistant.HistoryLimit
	assistantCfg.ListenTimeout = cfg.Assistant.ListenTimeout
	if path := cfg.Assistant.VocabularyFile; path != "" {
		voice, chat, err := assistant.LoadVocabularyFile(path)
		if err != nil {
			slog.Error("Failed to load assistant vocabulary", "path", path, "error", err)
			os.Exit(1)
		}
		if voice != nil {
			assistantCfg.VoiceVocabulary = voice
		}
		if chat != nil {
			assistantCfg.ChatVocabulary = chat
		}
		slog.Info("Loaded assistant vocabulary", "path", path, "voice", len(voice), "chat", len(chat))
	}
	sessions := session.NewManager(assistantCfg, logger)

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
		MaxSizeMB:     cfg.ConversationLog.MaxSizeMB,
		MaxBackups:    cfg.ConversationLog.MaxBackups,
		MaxAgeDays:    cfg.ConversationLog.MaxAgeDays,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}

	publisher := newEventPublisher(cfg.Events, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close event publisher", "error", err)
		}
	}()

	var limiter agent.Limiter
	if cfg.Assistant.RedisURL != "" {
		rl, err := agent.NewRedisRateLimiter(cfg.Assistant.RedisURL, cfg.Assistant.RateLimit, time.Minute, logger)
		if err != nil {
			slog.Error("Failed to configure redis rate limiter", "error", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.HealthCheck)
		if err := rl.Ping(pingCtx); err != nil {
			slog.Warn("Redis unreachable, rate limiting will fail open until it recovers", "error", err)
		}
		cancel()
		limiter = rl
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(repo, sessions, publisher, cfg.IsDevelopment())
	healthHandler := api.NewHealthHandler(repo, cfg.Timeout.HealthCheck)
	agentHandler := agent.NewHandler(agent.NewService(repo), voicews.NewRegistry(), conversationLogger, agent.Options{
		RateLimit:     cfg.Assistant.RateLimit,
		Limiter:       limiter,
		AllowedOrigin: cfg.FrontendURL,
		IsDev:         cfg.IsDevelopment(),
	})
	defer agentHandler.Close()
	sessions.OnRemove(agentHandler.EndSession)

	spa, err := web.SPAHandler()
	if err != nil {
		slog.Error("Failed to load embedded frontend", "error", err)
		os.Exit(1)
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(identity.Middleware(sessions))

	r.Route("/api", func(r chi.Router) {
		healthHandler.RegisterHealth(r)
		baseHandler.RegisterRoutes(r)
		agentHandler.RegisterRoutes(r)
	})

	// Serve embedded assistant console (SPA catch-all).
	r.Handle("/*", spa)

	// No WriteTimeout: voice websockets are long-lived.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartSweeper(ctx, cfg.SessionTTL, cfg.SweepInterval)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Shutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newEventPublisher connects to RabbitMQ when configured. A broker that cannot
// be reached at startup disables publishing rather than the server.
func newEventPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		slog.Info("Inventory events disabled (RABBITMQ_URL not set)")
		return events.Nop{}
	}
	broker, err := events.NewRabbitMQ(events.RabbitMQConfig{URL: cfg.RabbitMQURL, Exchange: cfg.Exchange}, logger)
	if err != nil {
		slog.Error("Inventory events disabled", "error", err)
		return events.Nop{}
	}
	guarded := events.NewBreaker(broker, events.BreakerSettings{
		ConsecutiveFailures: uint32(cfg.BreakerFailures),
		OpenTimeout:         cfg.BreakerOpenDelay,
	}, logger)
	return events.NewAsync(guarded, cfg.QueueSize, cfg.PublishTimeout, logger)
}
