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

	"pairchat/internal/auth"
	"pairchat/internal/chat"
	"pairchat/internal/commands"
	"pairchat/internal/config"
	"pairchat/internal/data"
	"pairchat/internal/db"
	"pairchat/internal/middleware"
	"pairchat/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Initialize database
	dbClient, err := db.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	// Ensure indexes exist
	if err := dbClient.CreateIndexes(ctx); err != nil {
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Stores and the conversation engine
	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	chatsStore := data.NewChatsStore(dbClient.ChatsCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	resolver := commands.New(
		commands.WithCatFactURL(cfg.Commands.CatFactURL),
		commands.WithQuoteURL(cfg.Commands.QuoteURL),
		commands.WithHTTPClient(&http.Client{Timeout: cfg.Commands.Timeout}),
	)

	engine := chat.NewEngine(chatsStore, msgsStore, resolver, logger)

	avatars, err := storage.NewS3Storage(storage.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		PublicURL:       cfg.S3.PublicURL,
	})
	if err != nil {
		logger.Error("failed to initialize avatar storage", "error", err)
		os.Exit(1)
	}

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Limiter for the register/login endpoints (small burst allows a couple
	// of quick retries)
	limiterStore := middleware.NewLimiterStore(cfg.RateLimit.RPM, cfg.RateLimit.Burst, time.Minute)
	defer limiterStore.Stop()

	srv := newServer(usersStore, engine, jwtMgr, avatars, logger)

	// No WriteTimeout: the websocket endpoint holds connections open far
	// longer than any request deadline.
	httpServer := &http.Server{
		Addr:        cfg.Server.Address(),
		Handler:     srv.routes(limiterStore),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server exit", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
