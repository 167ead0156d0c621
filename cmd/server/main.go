// Quote assistant server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/krea02/ai-agent-demo/internal/agent"
	"github.com/krea02/ai-agent-demo/internal/api"
	"github.com/krea02/ai-agent-demo/internal/config"
	"github.com/krea02/ai-agent-demo/internal/identity"
	"github.com/krea02/ai-agent-demo/internal/knowledge"
	"github.com/krea02/ai-agent-demo/internal/middleware"
	"github.com/krea02/ai-agent-demo/internal/realtime"
	"github.com/krea02/ai-agent-demo/internal/store"
	"github.com/krea02/ai-agent-demo/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "session_backend", cfg.SessionBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sm := realtime.NewSessionManager()

	sessions, sweeper, err := openStore(ctx, cfg, sm.CloseSession, logger)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(ctx); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected", "backend", cfg.SessionBackend)

	retriever, err := knowledge.Load(cfg.KnowledgePath)
	if err != nil {
		slog.Error("Failed to load knowledge corpus", "error", err)
		os.Exit(1)
	}
	slog.Info("Knowledge corpus loaded", "documents", retriever.Len())

	deps := agent.Deps{
		Store:     sessions,
		Retriever: retriever,
		Answerer:  agent.StaticAnswerer{},
		Logger:    logger,
	}

	if cfg.CollaboratorAddr != "" {
		slog.Info("Connecting to collaborator service via gRPC", "address", cfg.CollaboratorAddr)

		grpcCfg := agent.DefaultGrpcClientConfig(cfg.CollaboratorAddr)
		grpcCfg.RequestTimeout = cfg.CollaboratorTimeout
		client, err := agent.NewGrpcClient(grpcCfg, logger)
		if err != nil {
			slog.Warn("Failed to connect to collaborator, answering from the knowledge corpus only", "error", err)
		} else {
			defer client.Close()
			deps.Answerer = client
			deps.Transcriber = client
			deps.Synthesizer = client
		}
	} else {
		slog.Info("Collaborator disabled (COLLABORATOR_ADDR not set), answering from the knowledge corpus only")
	}

	conversationLogger, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	deps.Log = conversationLogger

	svc, err := agent.NewService(agent.Config{HistoryLimit: cfg.HistoryLimit, TopK: cfg.TopK}, deps)
	if err != nil {
		slog.Error("Failed to initialize quote service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil {
			slog.Error("Failed to close quote service", "error", closeErr)
		}
	}()

	// Initialize handlers.
	quoteHandler := agent.NewHandler(svc, agent.HandlerConfig{
		MaxBodyBytes:      cfg.MaxBodyBytes,
		MaxAudioBytes:     cfg.MaxAudioBytes,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})
	defer quoteHandler.Close()

	wsHandler := realtime.NewWebSocketHandler(svc, sm, realtime.Config{
		AllowedOrigin: cfg.FrontendURL,
		IsDev:         cfg.IsDevelopment(),
	})
	health := api.NewHealth(map[string]api.Pinger{"sessions": svc})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	r.Method(http.MethodGet, "/api/health", health)
	quoteHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/quote", wsHandler.ServeHTTP)

	// Serve embedded chat page (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSocket connections are long-lived, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if sweeper != nil {
		g.Go(func() error {
			slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL, "interval", cfg.SweepInterval)
			return sweeper.Run(gctx)
		})
	}

	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// openStore builds the configured session backend. The sweeper is only
// returned for backends without native expiry.
func openStore(ctx context.Context, cfg *config.Config, onEvict store.EvictFunc, logger *slog.Logger) (store.SessionStore, *store.Sweeper, error) {
	switch cfg.SessionBackend {
	case config.BackendSQLite:
		s, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, &store.Sweeper{
			Backend:  s,
			TTL:      cfg.SessionTTL,
			Interval: cfg.SweepInterval,
			OnEvict:  onEvict,
			Logger:   logger,
		}, nil
	case config.BackendRedis:
		s, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return store.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL, onEvict), nil, nil
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() || cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
