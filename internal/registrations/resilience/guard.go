package resilience

import (
	"context"

	"go.uber.org/zap"

	"kioskreg/pkg/logger"
)

// Guard объединяет предохранитель и повторы для одного внешнего сервиса.
// Повторы выполняются внутри одного вызова предохранителя, поэтому
// серия неудачных попыток считается одной ошибкой.
type Guard struct {
	name    string
	breaker *CircuitBreaker
	retry   *Retry
}

// NewGuard создает защиту внешнего сервиса name.
func NewGuard(name string, breaker BreakerConfig, retry RetryConfig) *Guard {
	return &Guard{
		name:    name,
		breaker: NewCircuitBreaker(name, breaker),
		retry:   NewRetry(name, retry),
	}
}

// Execute выполняет operation под защитой.
func (g *Guard) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	logger.Log(ctx).Debug(ctx, "executing guarded operation",
		zap.String("service", g.name),
		zap.String("operation", operation))

	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.retry.Execute(ctx, fn)
	})
}

// State возвращает состояние предохранителя.
func (g *Guard) State() State {
	return g.breaker.State()
}
