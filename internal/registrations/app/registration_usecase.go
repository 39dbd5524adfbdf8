// Package app implements application business logic for the registrations service.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/domain/schema"
	"kioskreg/internal/registrations/metrics"
	"kioskreg/internal/registrations/ports/repositories"
	"kioskreg/internal/registrations/ports/services"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

// Ошибки уровня бизнес-логики.
var (
	ErrNotFound             = errors.New("registration not found")
	ErrSubmissionInProgress = errors.New("submission with this idempotency key is still in progress")
)

// Константы для сообщений об ошибках.
const (
	ErrCreate        = "failed to create registration"
	ErrGet           = "failed to get registration"
	ErrList          = "failed to list registrations"
	ErrReplay        = "failed to load replayed registration"
	ErrReplayMissing = "idempotency key refers to a missing registration"
)

// Константы для сообщений logger.
const (
	LogValidationFailed       = "registration rejected by validation"
	LogRegistrationCreated    = "registration created"
	LogIdempotencyUnavailable = "idempotency store unavailable, continuing without guard"
	LogIdempotencyRelease     = "failed to release idempotency key"
	LogIdempotencyComplete    = "failed to complete idempotency key"
	LogReplay                 = "duplicate submission answered with stored registration"
	LogInProgress             = "duplicate submission while first one is in progress"
	LogExportFailed           = "failed to export registration"
)

// DefaultExportDeadline ограничивает одну выгрузку вместе со всеми повторами.
const DefaultExportDeadline = time.Minute

// RegistrationUseCase представляет бизнес-логику регистраций.
type RegistrationUseCase struct {
	repo        repositories.RegistrationRepository
	idempotency services.IdempotencyStore
	exporter    services.RegistrationExporter
	metrics     *metrics.Metrics

	exportDeadline time.Duration
	exports        sync.WaitGroup
}

// Option настраивает RegistrationUseCase.
type Option func(*RegistrationUseCase)

// WithExportDeadline задает предельное время одной фоновой выгрузки.
func WithExportDeadline(d time.Duration) Option {
	return func(uc *RegistrationUseCase) {
		if d > 0 {
			uc.exportDeadline = d
		}
	}
}

// NewRegistrationUseCase создает новый экземпляр RegistrationUseCase.
// idempotency и exporter могут быть nil.
func NewRegistrationUseCase(
	repo repositories.RegistrationRepository,
	idempotency services.IdempotencyStore,
	exporter services.RegistrationExporter,
	m *metrics.Metrics,
	opts ...Option,
) *RegistrationUseCase {
	uc := &RegistrationUseCase{
		repo:           repo,
		idempotency:    idempotency,
		exporter:       exporter,
		metrics:        m,
		exportDeadline: DefaultExportDeadline,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create проверяет и сохраняет регистрацию.
// Повтор с уже обработанным ключом идемпотентности возвращает сохраненную запись и replayed = true.
func (uc *RegistrationUseCase) Create(
	ctx context.Context,
	idempotencyKey string,
	req v1.CreateRegistrationRequest,
) (reg *entities.Registration, replayed bool, err error) {
	defer uc.metrics.ObserveCreate(time.Now())

	log := logger.Log(ctx).With(zap.String("method", "RegistrationUseCase.Create"))

	reg, err = schema.Validate(req)
	if err != nil {
		var validationErr *schema.ValidationError
		if errors.As(err, &validationErr) {
			uc.metrics.IncrementValidationFailures()
			log.Debug(ctx, LogValidationFailed, zap.Int("issues", len(validationErr.Issues)))
		}
		return nil, false, err
	}

	guarded := false
	if idempotencyKey != "" && uc.idempotency != nil {
		reserved, existingID, reserveErr := uc.idempotency.Reserve(ctx, idempotencyKey)
		switch {
		case reserveErr != nil:
			log.Warn(ctx, LogIdempotencyUnavailable, zap.Error(reserveErr))
		case reserved:
			guarded = true
		case existingID == "":
			log.Info(ctx, LogInProgress)
			return nil, false, ErrSubmissionInProgress
		default:
			existing, replayErr := uc.replay(ctx, existingID)
			if replayErr != nil {
				return nil, false, replayErr
			}
			log.Info(ctx, LogReplay, zap.String("registration_id", existing.ID))
			return existing, true, nil
		}
	}

	if err := uc.repo.Create(ctx, reg); err != nil {
		if guarded {
			if releaseErr := uc.idempotency.Release(ctx, idempotencyKey); releaseErr != nil {
				log.Warn(ctx, LogIdempotencyRelease, zap.Error(releaseErr))
			}
		}
		return nil, false, fmt.Errorf("%s: %w", ErrCreate, err)
	}

	if guarded {
		if completeErr := uc.idempotency.Complete(ctx, idempotencyKey, reg.ID); completeErr != nil {
			log.Warn(ctx, LogIdempotencyComplete, zap.Error(completeErr))
		}
	}

	uc.metrics.IncrementRegistrationsCreated()
	log.Info(ctx, LogRegistrationCreated, zap.String("registration_id", reg.ID))

	uc.exportAsync(ctx, reg)

	return reg, false, nil
}

// Get возвращает регистрацию по ID.
func (uc *RegistrationUseCase) Get(ctx context.Context, id string) (*entities.Registration, error) {
	reg, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrGet, err)
	}
	if reg == nil {
		return nil, ErrNotFound
	}
	return reg, nil
}

// List возвращает все регистрации в порядке создания.
func (uc *RegistrationUseCase) List(ctx context.Context) ([]*entities.Registration, error) {
	regs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrList, err)
	}
	if regs == nil {
		regs = []*entities.Registration{}
	}
	return regs, nil
}

func (uc *RegistrationUseCase) replay(ctx context.Context, id string) (*entities.Registration, error) {
	existing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrReplay, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%s: %s", ErrReplay, ErrReplayMissing)
	}
	uc.metrics.IncrementIdempotentReplays()
	return existing, nil
}

// WaitExports ждет завершения фоновых выгрузок или отмены ctx.
func (uc *RegistrationUseCase) WaitExports(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.exports.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for exports: %w", ctx.Err())
	}
}

// exportAsync копирует запись во внешнюю таблицу после ответа клиенту.
// Выгрузка не зависит от отмены запроса, ошибка не отменяет сохранение.
func (uc *RegistrationUseCase) exportAsync(ctx context.Context, reg *entities.Registration) {
	if uc.exporter == nil {
		return
	}

	exported := reg.Clone()
	exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.exportDeadline)

	uc.exports.Add(1)
	go func() {
		defer uc.exports.Done()
		defer cancel()

		if err := uc.exporter.Export(exportCtx, exported); err != nil {
			uc.metrics.IncrementExportFailures()
			logger.Log(exportCtx).Error(exportCtx, LogExportFailed,
				zap.String("registration_id", exported.ID),
				zap.Error(err))
		}
	}()
}
