package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luminastudio/studio-backend/api/routes"
	"github.com/luminastudio/studio-backend/internal/auth"
	"github.com/luminastudio/studio-backend/internal/cleanup"
	"github.com/luminastudio/studio-backend/internal/events"
	"github.com/luminastudio/studio-backend/internal/photos"
	"github.com/luminastudio/studio-backend/internal/users"
	"github.com/luminastudio/studio-backend/pkg/auth/session"
	"github.com/luminastudio/studio-backend/pkg/config"
	"github.com/luminastudio/studio-backend/pkg/db"
	"github.com/luminastudio/studio-backend/pkg/logger"
	"github.com/luminastudio/studio-backend/pkg/metrics"
	"github.com/luminastudio/studio-backend/pkg/migrate"
	"github.com/luminastudio/studio-backend/pkg/pubsub"
	"github.com/luminastudio/studio-backend/pkg/redis"
	"github.com/luminastudio/studio-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer pubsubClient.Close()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cleanupPublisher, err := cleanup.NewPublisher(pubsubClient.CleanupPublisher(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup publisher", err)
		os.Exit(1)
	}

	photoRepo := photos.NewRepository(dbClient.DB())
	eventRepo := events.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	photoService, err := photos.NewService(photoRepo, eventRepo, gcsClient, cleanupPublisher, logg, photos.Options{
		Workers:     cfg.Ingest.Workers,
		FileTimeout: cfg.Ingest.FileTimeout,
		Thumbnails:  photos.NewThumbnailGenerator(cfg.Ingest.ThumbnailSizes, cfg.Ingest.ThumbnailQuality),
		Metrics:     metrics.NewIngestMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create photo service", err)
		os.Exit(1)
	}

	eventService, err := events.NewService(eventRepo, photoRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			sessionManager,
			authService,
			photoService,
			eventService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
