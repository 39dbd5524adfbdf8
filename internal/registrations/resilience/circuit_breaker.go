// Package resilience защищает внешние вызовы сервиса регистраций
// предохранителем и повторными попытками.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"kioskreg/pkg/logger"
)

// State - состояние предохранителя.
type State int

// Состояния предохранителя.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Константы для логирования.
const (
	LogBreakerStateChange = "circuit breaker state changed"
	LogBreakerReject      = "circuit breaker rejected call"
)

// ErrCircuitOpen возвращается, пока предохранитель разомкнут.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig содержит пороги предохранителя.
type BreakerConfig struct {
	// ErrorThreshold - число ошибок подряд, после которого цепь размыкается.
	ErrorThreshold int
	// SuccessThreshold - число успехов в полуоткрытом состоянии для замыкания.
	SuccessThreshold int
	// OpenTimeout - сколько цепь остается разомкнутой до пробного вызова.
	OpenTimeout time.Duration
}

// CircuitBreaker размыкает цепь после серии ошибок и пропускает
// пробные вызовы по истечении OpenTimeout.
type CircuitBreaker struct {
	name   string
	config BreakerConfig
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	changedAt time.Time
}

// NewCircuitBreaker создает замкнутый предохранитель.
func NewCircuitBreaker(name string, config BreakerConfig) *CircuitBreaker {
	if config.ErrorThreshold <= 0 {
		config.ErrorThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}

	return &CircuitBreaker{
		name:      name,
		config:    config,
		now:       time.Now,
		state:     StateClosed,
		changedAt: time.Now(),
	}
}

// Execute вызывает fn, если цепь это позволяет, и учитывает результат.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allow(ctx) {
		logger.Log(ctx).Debug(ctx, LogBreakerReject, zap.String("circuit_breaker", cb.name))
		return ErrCircuitOpen
	}

	err := fn(ctx)
	cb.record(ctx, err)
	return err
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow(ctx context.Context) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if cb.now().Sub(cb.changedAt) < cb.config.OpenTimeout {
			return false
		}
		cb.transition(ctx, StateHalfOpen)
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) record(ctx context.Context, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		switch cb.state {
		case StateClosed:
			cb.failures++
			if cb.failures >= cb.config.ErrorThreshold {
				cb.transition(ctx, StateOpen)
			}
		case StateHalfOpen:
			cb.transition(ctx, StateOpen)
		}
		return
	}

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transition(ctx, StateClosed)
		}
	}
}

// transition вызывается под cb.mu.
func (cb *CircuitBreaker) transition(ctx context.Context, next State) {
	logger.Log(ctx).Info(ctx, LogBreakerStateChange,
		zap.String("circuit_breaker", cb.name),
		zap.Stringer("from", cb.state),
		zap.Stringer("to", next),
		zap.Int("failures", cb.failures))

	cb.state = next
	cb.changedAt = cb.now()
	cb.failures = 0
	cb.successes = 0
}
