package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"kioskreg/internal/registrations/metrics"
)

// unmatchedRoute - метка для запросов, не попавших ни в один маршрут.
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware считает запросы по шаблону маршрута, а не по фактическому пути.
func NewMetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := unmatchedRoute
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.ObserveHTTPRequest(c.Method(), route, status, start)
		return err
	}
}
