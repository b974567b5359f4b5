package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRoutes mounts the API. gatherer may be nil, in which case /metrics is
// not served.
func SetupRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/state", handler.GetState)
	api.Get("/today", handler.GetToday)
	api.Post("/refresh", handler.Refresh)

	// Cities
	api.Post("/cities/select", handler.SelectCity)
	api.Post("/favorites", handler.AddFavorite)
	api.Delete("/favorites/:id", handler.RemoveFavorite)
	api.Post("/location", handler.UseMyLocation)

	api.Put("/search", handler.SetSearchQuery)
	api.Get("/search", handler.GetSearch)

	// Settings
	api.Patch("/settings", handler.UpdateSettings)
	api.Put("/alerts/:id", handler.SetAlertRule)
	api.Put("/reminder", handler.SetReminder)

	api.Get("/toasts", handler.DrainToasts)

	log.Debug("Routes registered", zap.Int("handlers", int(app.HandlersCount())))

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}
