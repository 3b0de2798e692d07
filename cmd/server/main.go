package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/api"
	"github.com/andresuchdata/autopo-reorder/internal/cache"
	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/fulfillment"
	"github.com/andresuchdata/autopo-reorder/internal/marketing"
	"github.com/andresuchdata/autopo-reorder/internal/reorder"
	"github.com/andresuchdata/autopo-reorder/internal/repository/postgres"
	"github.com/andresuchdata/autopo-reorder/internal/service"
	"github.com/andresuchdata/autopo-reorder/internal/storage"
	"github.com/andresuchdata/autopo-reorder/pkg/kafka"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
	"github.com/andresuchdata/autopo-reorder/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Promotion lookups go through redis when it is configured and reachable
	promotionCache, err := cache.NewPromotionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Promotion cache unavailable, continuing without it")
		promotionCache = cache.NewNoopPromotionCache()
	}
	promotions := marketing.NewCachedPromotions(postgres.NewPromotionRepository(db), promotionCache)

	manager := reorder.NewManager(
		postgres.NewInventoryRepository(db, cfg.Reorder.DefaultWarehouse),
		marketing.NewCalendar(promotions),
		reorder.Options{
			Warehouses:       cfg.Reorder.Warehouses,
			DefaultWarehouse: cfg.Reorder.DefaultWarehouse,
			Workers:          cfg.Reorder.Workers,
		},
	)

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(ctx, cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		objectStorage = client
	}

	publisher, err := fulfillment.NewKafkaPublisher(kafka.NewClient(cfg.Kafka.Brokers), cfg.Kafka.OrdersTopic)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize order publisher")
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize services
	reorderService := service.NewReorderService(service.Dependencies{
		Planner:         manager,
		Runs:            postgres.NewRunRepository(db),
		Storage:         objectStorage,
		Publisher:       publisher,
		Metrics:         metrics.NewReorderMetrics(registry),
		ExportDir:       cfg.App.ExportDir,
		PublishRequired: cfg.Kafka.Required,
	})

	router, err := api.NewRouter(&api.Services{ReorderService: reorderService}, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		ServerMetrics:  metrics.NewServerMetrics(registry, "api"),
		MetricsHandler: metrics.Handler(registry),
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to build router")
	}

	// Initialize HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Strs("warehouses", warehouseNames(manager.Warehouses())).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func warehouseNames(warehouses []domain.Warehouse) []string {
	names := make([]string, 0, len(warehouses))
	for _, w := range warehouses {
		names = append(names, w.String())
	}
	return names
}
