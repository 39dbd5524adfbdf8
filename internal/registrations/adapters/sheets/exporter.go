// Package sheets выгружает регистрации в таблицу Google Sheets.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"kioskreg/internal/registrations/config"
	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/ports/services"
	"kioskreg/internal/registrations/resilience"
	"kioskreg/pkg/logger"
)

// Константы для сообщений.
const (
	ErrCreateService = "unable to create sheets service"
	ErrAppendRow     = "unable to append registration row"

	LogRowAppended = "registration exported to spreadsheet"

	valueInputRaw = "RAW"
	timeLayout    = "2006-01-02 15:04:05"
)

// Header - заголовок таблицы в порядке колонок Row.
var Header = []interface{}{
	"Fecha", "ID", "Nombre", "RUT", "RUT Empresa", "Teléfono", "Email",
	"Nivel de ventas", "Mentorías", "Jugar y activación", "Categoría",
}

// Exporter добавляет строку в таблицу для каждой сохраненной регистрации.
type Exporter struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	timeout       time.Duration
	guard         *resilience.Guard
}

// NewExporter создает клиент Sheets. Без дополнительных opts используется файл учетных данных из cfg.
func NewExporter(ctx context.Context, cfg *config.SheetsConfig, opts ...option.ClientOption) (services.RegistrationExporter, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrCreateService, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateService, err)
	}

	guard := resilience.NewGuard("sheets",
		resilience.BreakerConfig{
			ErrorThreshold:   cfg.ErrorThreshold,
			SuccessThreshold: cfg.SuccessThreshold,
			OpenTimeout:      cfg.OpenTimeout,
		},
		resilience.RetryConfig{
			MaxAttempts:    cfg.RetryAttempts,
			InitialBackoff: cfg.RetryBackoff,
			MaxBackoff:     cfg.Timeout,
			BackoffFactor:  2,
			ShouldRetry:    shouldRetry,
		})

	return &Exporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.Range,
		timeout:       cfg.Timeout,
		guard:         guard,
	}, nil
}

// Export добавляет регистрацию последней строкой таблицы.
func (e *Exporter) Export(ctx context.Context, reg *entities.Registration) error {
	log := logger.Log(ctx).With(zap.String("method", "Exporter.Export"), zap.String("registrationID", reg.ID))

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{Row(reg)},
	}

	err := e.guard.Execute(ctx, "append", func(ctx context.Context) error {
		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}

		_, err := e.service.Spreadsheets.Values.
			Append(e.spreadsheetID, e.writeRange, valueRange).
			ValueInputOption(valueInputRaw).
			Context(callCtx).
			Do()
		return err
	})
	if err != nil {
		log.Warn(ctx, ErrAppendRow, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrAppendRow, err)
	}

	log.Debug(ctx, LogRowAppended)
	return nil
}

// Row раскладывает регистрацию по колонкам Header.
func Row(reg *entities.Registration) []interface{} {
	companyRUT := ""
	if reg.CompanyRUT != nil {
		companyRUT = *reg.CompanyRUT
	}

	return []interface{}{
		reg.CreatedAt.UTC().Format(timeLayout),
		reg.ID,
		reg.Name,
		reg.RUT,
		companyRUT,
		reg.Phone,
		reg.Email,
		string(reg.SalesTier),
		string(reg.MentorshipInterest),
		string(reg.ActivationInterest),
		string(reg.Category()),
	}
}

// shouldRetry повторяет сетевые ошибки, 429 и 5xx. Остальные ответы API окончательны.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
