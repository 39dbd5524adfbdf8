package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kioskreg/internal/registrations/adapters/http/middleware"
	"kioskreg/internal/registrations/metrics"
	"kioskreg/internal/registrations/ports/services"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

const healthTimeout = 2 * time.Second

// RouterDeps - зависимости маршрутизатора.
type RouterDeps struct {
	Service services.RegistrationService
	Metrics *metrics.Metrics
	// Gatherer отдает метрики на /metrics. По умолчанию prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Pinger проверяет хранилище для /healthz. nil означает, что проверять нечего.
	Pinger services.Pinger
}

// SetupRouter настраивает маршрутизацию HTTP сервера.
func SetupRouter(app *fiber.App, deps RouterDeps) {
	handler := NewHandler(deps.Service)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	if deps.Metrics != nil {
		app.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	api := app.Group("/api/registrations")
	api.Post("/", handler.Create)
	api.Get("/", handler.List)
	api.Get("/:id", handler.Get)

	app.Get("/healthz", healthHandler(deps.Pinger))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(v1.ErrorResponse{Error: v1.ErrorRouteNotFound})
	})
}

func healthHandler(pinger services.Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		if pinger == nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
		}

		ctx, cancel := context.WithTimeout(middleware.RequestContext(c), healthTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			logger.Log(ctx).Warn(ctx, "health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}
