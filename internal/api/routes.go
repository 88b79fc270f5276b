package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/metrics"
)

func SetupRoutes(app *fiber.App, handler *Handler, m *metrics.Metrics, staticDir string, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,DELETE",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	if m != nil {
		app.Use(m.HTTPMiddleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	if staticDir != "" {
		app.Static("/static", staticDir)
	}

	// Page
	app.Get("/", handler.GetPage)

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/weather", handler.GetWeather)

	widgets := api.Group("/widgets")
	widgets.Post("/", handler.CreateWidget)
	widgets.Get("/:id", handler.GetWidget)
	widgets.Delete("/:id", handler.DeleteWidget)
	widgets.Post("/:id/lookup", handler.StartLookup)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	log.Info("Routes registered", zap.String("static_dir", staticDir))
}
