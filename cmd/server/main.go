package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/api"
	"github.com/bobby-s-dev/weather-widget/internal/config"
	"github.com/bobby-s-dev/weather-widget/internal/metrics"
	"github.com/bobby-s-dev/weather-widget/internal/scheduler"
	"github.com/bobby-s-dev/weather-widget/internal/services"
	"github.com/bobby-s-dev/weather-widget/internal/telemetry"
	"github.com/bobby-s-dev/weather-widget/internal/widget"
	"github.com/bobby-s-dev/weather-widget/pkg/logger"
)

func main() {
	// Bootstrap logger until the configured one is ready
	bootLogger, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootLogger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		bootLogger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	log.Info("Starting Weather Widget Service", zap.String("provider", cfg.Provider.Name))

	shutdownTracing, err := telemetry.InitProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	m := metrics.NewMetrics("weather_widget")

	backend, err := services.NewBackend(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize weather backend", zap.Error(err))
	}
	pipeline := services.NewPipeline(backend, m, log)

	presenter := widget.NewPresenter(cfg.Widget.ExtremeTempC)
	widgetOpts := widget.Options{
		DefaultCity:   cfg.Widget.DefaultCity,
		LocationLabel: cfg.Widget.LocationLabel,
		OnStale:       m.StaleLookupDropped,
	}
	registry := widget.NewRegistry(
		func(id string) *widget.Widget {
			return widget.New(id, pipeline, presenter, widgetOpts, log)
		},
		cfg.Widget.IdleTTL,
		cfg.Widget.MaxInstances,
		m,
		log,
	)

	// Initialize scheduler
	sweepScheduler := scheduler.NewScheduler(registry, cfg.Widget.SweepSchedule, log)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(pipeline, registry, sweepScheduler, cfg.Widget.LookupTimeout, cfg.Widget.LocationLabel, log)
	api.SetupRoutes(app, handler, m, cfg.Server.StaticDir, log)

	// Start scheduler
	if err := sweepScheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweepScheduler.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	if err := shutdownTracing(ctx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
