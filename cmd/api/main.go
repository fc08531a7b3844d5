package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vitrine-labs/signage-backend/api/routes"
	"github.com/vitrine-labs/signage-backend/internal/auth"
	"github.com/vitrine-labs/signage-backend/internal/dashboard"
	"github.com/vitrine-labs/signage-backend/internal/devices"
	"github.com/vitrine-labs/signage-backend/internal/links"
	"github.com/vitrine-labs/signage-backend/internal/media"
	"github.com/vitrine-labs/signage-backend/internal/playlists"
	"github.com/vitrine-labs/signage-backend/internal/preview"
	"github.com/vitrine-labs/signage-backend/internal/users"
	"github.com/vitrine-labs/signage-backend/pkg/auth/session"
	"github.com/vitrine-labs/signage-backend/pkg/config"
	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
	"github.com/vitrine-labs/signage-backend/pkg/metrics"
	"github.com/vitrine-labs/signage-backend/pkg/migrate"
	"github.com/vitrine-labs/signage-backend/pkg/pubsub"
	"github.com/vitrine-labs/signage-backend/pkg/redis"
	"github.com/vitrine-labs/signage-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	var deviceEvents pubsub.DeviceEventPublisher = pubsub.NopPublisher{}
	if cfg.PubSub.Enabled {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		deviceEvents = pubsub.NewTopicPublisher(pubsubClient.DeviceEventsPublisher())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	previewMetrics := metrics.NewPreviewMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	deviceRepo := devices.NewRepository(dbClient)
	playlistRepo := playlists.NewRepository(dbClient)
	mediaRepo := media.NewRepository(dbClient.DB())
	linkRepo := links.NewRepository(dbClient.DB())

	deviceService, err := devices.NewService(devices.ServiceParams{
		DeviceRepo:   deviceRepo,
		PlaylistRepo: playlistRepo,
		Events:       deviceEvents,
		Logger:       logg,
		Config:       cfg.PubSub,
	})
	if err != nil {
		logg.Error(ctx, "failed to create device service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:        mediaRepo,
		GCS:         gcsClient,
		Bucket:      cfg.GCS.BucketName,
		UploadTTL:   cfg.GCS.UploadURLExpiry,
		MaxUploadMB: cfg.Media.MaxUploadMB,
	})
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	linkService, err := links.NewService(links.ServiceParams{
		LinkRepo: linkRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to create link service", err)
		os.Exit(1)
	}

	playlistService, err := playlists.NewService(playlists.ServiceParams{
		PlaylistRepo: playlistRepo,
		ItemRepo:     playlists.NewItemRepository(dbClient),
		MediaRepo:    mediaRepo,
		LinkRepo:     linkRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to create playlist service", err)
		os.Exit(1)
	}

	previewManager := preview.NewManager(cfg.Preview, previewMetrics, logg)
	go previewManager.Run(ctx)

	previewService, err := preview.NewService(preview.ServiceParams{
		Playlists: playlistService,
		Manager:   previewManager,
	})
	if err != nil {
		logg.Error(ctx, "failed to create preview service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		DeviceRepo:   deviceRepo,
		MediaRepo:    mediaRepo,
		LinkRepo:     linkRepo,
		PlaylistRepo: playlistRepo,
	})
	if err != nil {
		logg.Error(ctx, "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			GCS:              gcsClient,
			Session:          sessionManager,
			HTTPMetrics:      httpMetrics,
			Registry:         registry,
			AuthService:      authService,
			DeviceService:    deviceService,
			MediaService:     mediaService,
			LinkService:      linkService,
			PlaylistService:  playlistService,
			PreviewService:   previewService,
			DashboardService: dashboardService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "error during shutdown", err)
		}
	}
}
