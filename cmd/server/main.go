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

	"github.com/KirkDiggler/hiddenstroke/internal/catalog"
	"github.com/KirkDiggler/hiddenstroke/internal/common/clock"
	"github.com/KirkDiggler/hiddenstroke/internal/common/uuid"
	"github.com/KirkDiggler/hiddenstroke/internal/config"
	"github.com/KirkDiggler/hiddenstroke/internal/handlers/httpapi"
	"github.com/KirkDiggler/hiddenstroke/internal/logging"
	leaderboardRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/leaderboard"
	sessionRepo "github.com/KirkDiggler/hiddenstroke/internal/repositories/session"
	"github.com/KirkDiggler/hiddenstroke/internal/services/game"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env when present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))
	slog.SetDefault(logger)

	cat, err := catalog.New(&catalog.Config{CaseFile: cfg.CaseFile})
	if err != nil {
		logger.Error("failed to load case catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("case catalog loaded", slog.Int("cases", cat.Size()))

	var (
		sessions     sessionRepo.Repository
		leaderboards leaderboardRepo.Repository
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		sessions, err = sessionRepo.NewRedis(&sessionRepo.Config{RedisClient: redisClient})
		if err != nil {
			logger.Error("failed to create session repository", slog.String("error", err.Error()))
			os.Exit(1)
		}

		leaderboards, err = leaderboardRepo.NewRedis(&leaderboardRepo.Config{RedisClient: redisClient})
		if err != nil {
			logger.Error("failed to create leaderboard repository", slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.Info("using redis stores", slog.String("addr", cfg.Redis.Addr))
	} else {
		sessions = sessionRepo.NewMemory()
		leaderboards = leaderboardRepo.NewMemory()
		logger.Info("using in-memory stores")
	}

	gameSvc, err := game.New(&game.Config{
		Catalog:              cat,
		SessionRepo:          sessions,
		LeaderboardRepo:      leaderboards,
		Clock:                &clock.DefaultClock{},
		UUIDGenerator:        uuid.New(),
		DisableFinancialTool: !cfg.FinancialToolEnabled,
		LeaderboardLimit:     cfg.LeaderboardTopN,
	})
	if err != nil {
		logger.Error("failed to create game service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler, err := httpapi.NewHandler(&httpapi.Config{
		GameService: gameSvc,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server has been shut down")
}
