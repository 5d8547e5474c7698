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

	"github.com/joho/godotenv"

	"gestorbanco/internal/auth"
	"gestorbanco/internal/config"
	"gestorbanco/internal/db"
	"gestorbanco/internal/handlers"
	"gestorbanco/internal/services"
	"gestorbanco/internal/session"
	"gestorbanco/internal/store"
	"gestorbanco/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("read .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	sessions, closeSessions := newSessionStore(cfg, logger)
	defer closeSessions()

	codec, err := auth.NewCodec(cfg.CodecKey)
	if err != nil {
		logger.Error("invalid codec key", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	users := store.NewUserStore(database)
	customers := store.NewCustomerStore(database)
	accounts := store.NewAccountStore(database)
	operations := store.NewOperationStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	authService := services.NewAuthService(txRunner, users, audit, tokens, session.NewGuard(cfg.MaxLoginAttempts), cfg.RegistrationSecret, logger)
	ledger := services.NewLedgerService(txRunner, accounts, operations, customers, audit, hub, logger)
	customerService := services.NewCustomerService(txRunner, customers, accounts, audit, logger)

	handler := handlers.New(cfg, logger, codec, tokens, sessions, users, authService, ledger, customerService, accounts, customers, operations, audit, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("gestor banco listening", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newSessionStore uses redis when REDIS_ADDR is set and an in-process store otherwise.
func newSessionStore(cfg config.Config, logger *slog.Logger) (session.Store, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, sessions are kept in memory")
		return session.NewMemoryStore(cfg.SessionTTL), func() {}
	}
	client, err := session.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }
}
