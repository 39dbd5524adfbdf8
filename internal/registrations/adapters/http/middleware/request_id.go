// Package middleware содержит промежуточное ПО HTTP сервера регистраций.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"kioskreg/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

const localsRequestContext = "requestContext"

// NewRequestIDMiddleware берет X-Request-ID из запроса или генерирует новый,
// возвращает его в ответе и кладет контекст запроса в Locals.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		c.Set(HeaderRequestID, requestID)
		c.Locals(localsRequestContext, logger.NewRequestIDContext(c.Context(), requestID))

		return c.Next()
	}
}

// RequestContext возвращает контекст запроса с request_id.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsRequestContext).(context.Context); ok {
		return ctx
	}
	return c.Context()
}
