// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/api"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/cache"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/config"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/forecast"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/ledger"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/planner"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository/postgres"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/risk"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/storage"
	"github.com/AmanS2501/Tech-Alpha-Hack/pkg/logger"
	"github.com/gin-gonic/gin"
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

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	locationRepo := postgres.NewLocationRepository(db)
	movementRepo := postgres.NewMovementRepository(db)

	// Seed the working set from the persistence boundary
	registry := ledger.NewRegistry(cfg.Engine.WindowSize)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	locations, err := locationRepo.ListLocations(startupCtx)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load locations")
	}
	if len(locations) == 0 {
		logger.Log.Warn().Msg("no locations in database; run cmd/seed first")
	}
	for _, loc := range locations {
		history, err := locationRepo.GetDemandHistory(startupCtx, loc.Name, cfg.Engine.WindowSize)
		if err != nil {
			logger.Log.Fatal().Err(err).Str("location", loc.Name).Msg("Failed to load demand history")
		}
		if err := registry.Register(loc, history); err != nil {
			logger.Log.Fatal().Err(err).Str("location", loc.Name).Msg("Failed to register location")
		}
	}

	// Assemble the engine
	led := ledger.NewLedger(registry, movementRepo)
	led.SetDemandSink(locationRepo)
	adapter := forecast.NewAdapter(registry, forecast.NewSeasonalModel(), cfg.Engine.WindowSize)
	scorer := risk.NewScorer(adapter)
	pl := planner.NewPlanner(cfg.Engine.Medicine)

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, continuing without")
		reportCache = cache.NewNoopReportCache()
	}

	var sink engine.ReportSink
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(startupCtx, cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("object storage unavailable, reports stay local")
		} else {
			sink = storage.NewReportUploader(store)
		}
	}

	eng := engine.New(registry, led, adapter, scorer, pl, engine.Options{
		ReportCache: reportCache,
		ReportSink:  sink,
		HorizonDays: cfg.Engine.HorizonDays,
		Actor:       cfg.Engine.Actor,
	})

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Engine:    eng,
		Movements: movementRepo,
		Locations: locationRepo,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
