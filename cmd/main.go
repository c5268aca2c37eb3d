package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"

	"github.com/narunbabu/chess-sub009/config"
	"github.com/narunbabu/chess-sub009/db"
	"github.com/narunbabu/chess-sub009/handlers"
	"github.com/narunbabu/chess-sub009/pairing"
	"github.com/narunbabu/chess-sub009/realtime"
	"github.com/narunbabu/chess-sub009/repositories"
	"github.com/narunbabu/chess-sub009/routes"
	"github.com/narunbabu/chess-sub009/services"
	"github.com/narunbabu/chess-sub009/standings"
	"github.com/narunbabu/chess-sub009/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Object storage is optional. Without credentials the standings export
	// endpoint reports the snapshot feature as unavailable.
	var uploader storage.FileUploader
	if cfg.SnapshotsConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("standings snapshot export disabled, no object storage configured")
	}

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("WebSocket hub started")

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	proposalRepo := repositories.NewPostgresProposalRepository(dbConn)
	liveStartRepo := repositories.NewPostgresLiveStartRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	logger.Info("repositories initialized")

	tracker := services.NewActivityTracker(logger, 0, nil)

	presenceProvider := services.NewHTTPPresenceProvider(cfg.PresenceURL)
	presenceService := services.NewPresenceService(presenceProvider, tracker.Active, logger, 0, 0)

	gameAllocator := services.NewHTTPGameAllocator(cfg.GameServiceURL)

	matchService := services.NewMatchService(matchRepo, liveStartRepo, participantRepo, hub, logger, nil)
	scheduleService := services.NewScheduleService(matchRepo, proposalRepo, hub, logger, nil)
	liveStartService := services.NewLiveStartService(matchRepo, liveStartRepo, matchService, gameAllocator, hub, logger, nil)

	engine := standings.NewEngine(cfg.ByePoints)
	standingsService := services.NewStandingsService(matchRepo, participantRepo, engine, uploader, logger, nil)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pairingService := services.NewPairingService(participantRepo, pairing.NewRandomAllocator(rng))
	logger.Info("services initialized")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go presenceService.Run(rootCtx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// The activity gate applies only to the presence refresh batches; the
	// expiry sweeps must retire overdue rows even on a quiet deployment.
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			tracker.Check()

			ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
			defer cancel()

			if _, err := liveStartService.SweepExpired(ctx, time.Now()); err != nil {
				logger.Error("live start sweep failed", slog.Any("error", err))
			}
			if _, err := matchService.ExpireOverdue(ctx, time.Now()); err != nil {
				logger.Error("match deadline sweep failed", slog.Any("error", err))
			}
		}),
	)
	if err != nil {
		logger.Error("failed to register sweep job", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}()
	logger.Info("background scheduler started", slog.Duration("interval", time.Minute))

	h := routes.Handlers{
		Match:     handlers.NewMatchHandler(matchService, logger),
		Schedule:  handlers.NewScheduleHandler(scheduleService, logger),
		LiveStart: handlers.NewLiveStartHandler(liveStartService, logger),
		Standings: handlers.NewStandingsHandler(standingsService, logger),
		Pairing:   handlers.NewPairingHandler(pairingService, logger),
		Presence:  handlers.NewPresenceHandler(presenceService, tracker, logger),
		WebSocket: handlers.NewWebSocketHandler(hub, logger),
	}
	router := routes.SetupRoutes(h, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
