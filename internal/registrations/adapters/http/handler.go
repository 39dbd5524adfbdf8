// Package http содержит HTTP API сервиса регистраций.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"kioskreg/internal/registrations/adapters/http/middleware"
	"kioskreg/internal/registrations/app"
	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/domain/schema"
	"kioskreg/internal/registrations/ports/services"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
	"kioskreg/pkg/validation"
)

// Константы сообщений для логирования.
const (
	LogHandlerCreate = "handling create registration request"
	LogHandlerGet    = "handling get registration request"
	LogHandlerList   = "handling list registrations request"

	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgSendResponse       = "error sending response"
)

const issueInvalidType = "invalid_type"

// Handler обрабатывает HTTP-запросы к регистрациям.
type Handler struct {
	service services.RegistrationService
}

// NewHandler создает новый обработчик.
func NewHandler(service services.RegistrationService) *Handler {
	return &Handler{service: service}
}

// Create обрабатывает POST /api/registrations.
func (h *Handler) Create(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.Log(ctx).With(zap.String("handler", "Handler.Create"))
	log.Debug(ctx, LogHandlerCreate)

	req, typeIssues, err := decodeCreateRequest(c)
	if err != nil {
		log.Warn(ctx, ErrMsgInvalidRequestBody, zap.Error(err))
		return sendJSON(c, fiber.StatusBadRequest, v1.ErrorResponse{
			Error:   v1.ErrorValidationFailed,
			Message: v1.MessageInvalidBody,
		})
	}
	if len(typeIssues) > 0 {
		issues := mergeIssues(typeIssues, schemaIssues(req))
		log.Debug(ctx, "request has fields of wrong type", zap.Int("issues", len(issues)))
		return sendJSON(c, fiber.StatusBadRequest, v1.ErrorResponse{
			Error:   v1.ErrorValidationFailed,
			Message: validation.Summary(issues),
			Details: issues,
		})
	}

	reg, replayed, err := h.service.Create(ctx, c.Get(v1.HeaderIdempotencyKey), req)
	if err != nil {
		return handleError(c, err)
	}

	if replayed {
		c.Set(v1.HeaderIdempotentReplayed, "true")
	}
	return sendJSON(c, fiber.StatusCreated, reg.ToAPI())
}

// Get обрабатывает GET /api/registrations/:id.
func (h *Handler) Get(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	id := c.Params("id")
	log := logger.Log(ctx).With(zap.String("handler", "Handler.Get"), zap.String("registrationID", id))
	log.Debug(ctx, LogHandlerGet)

	reg, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			return sendJSON(c, fiber.StatusNotFound, v1.ErrorResponse{
				Error:   v1.ErrorNotFound,
				Message: fmt.Sprintf(v1.MessageNotFoundFmt, id),
			})
		}
		return handleError(c, err)
	}

	return sendJSON(c, fiber.StatusOK, reg.ToAPI())
}

// List обрабатывает GET /api/registrations.
func (h *Handler) List(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerList)

	regs, err := h.service.List(ctx)
	if err != nil {
		return handleError(c, err)
	}

	return sendJSON(c, fiber.StatusOK, toAPIList(regs))
}

func toAPIList(regs []*entities.Registration) []v1.Registration {
	out := make([]v1.Registration, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.ToAPI())
	}
	return out
}

// handleError переводит ошибку бизнес-логики в HTTP-ответ.
func handleError(c fiber.Ctx, err error) error {
	ctx := middleware.RequestContext(c)

	var validationErr *schema.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return sendJSON(c, fiber.StatusBadRequest, v1.ErrorResponse{
			Error:   v1.ErrorValidationFailed,
			Message: validationErr.Error(),
			Details: validationErr.Issues,
		})
	case errors.Is(err, app.ErrSubmissionInProgress):
		return sendJSON(c, fiber.StatusConflict, v1.ErrorResponse{
			Error:   v1.ErrorConflict,
			Message: v1.MessageInProgress,
		})
	case errors.Is(err, app.ErrNotFound):
		return sendJSON(c, fiber.StatusNotFound, v1.ErrorResponse{Error: v1.ErrorNotFound})
	default:
		logger.Log(ctx).Error(ctx, "request failed", zap.Error(err))
		return sendJSON(c, fiber.StatusInternalServerError, v1.ErrorResponse{
			Error:   v1.ErrorInternal,
			Message: v1.MessageInternal,
		})
	}
}

// decodeCreateRequest разбирает тело запроса. Поле неверного типа не прерывает
// разбор: остальные поля заполняются, а для такого поля возвращается замечание.
// Ошибка возвращается только для тела, которое не является JSON-объектом.
func decodeCreateRequest(c fiber.Ctx) (v1.CreateRegistrationRequest, []v1.Issue, error) {
	var req v1.CreateRegistrationRequest

	err := c.Bind().Body(&req)
	var typeErr *json.UnmarshalTypeError
	if err != nil && (!errors.As(err, &typeErr) || typeErr.Field == "") {
		return req, nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return req, nil, err
	}

	var issues []v1.Issue
	for _, field := range v1.CreateRequestFields {
		value, ok := raw[field]
		if !ok {
			continue
		}
		if kind := jsonKind(value); kind != "string" {
			issues = append(issues, v1.Issue{
				Code:    issueInvalidType,
				Path:    []string{field},
				Message: fmt.Sprintf("Se esperaba string, se recibió %s", kind),
			})
		}
	}
	return req, issues, nil
}

func jsonKind(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return "undefined"
	}
	switch value[0] {
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "number"
	}
}

// schemaIssues возвращает замечания схемы для частично разобранного запроса.
func schemaIssues(req v1.CreateRegistrationRequest) []v1.Issue {
	_, err := schema.Validate(req)
	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Issues
	}
	return nil
}

// mergeIssues объединяет замечания в порядке полей запроса. Для поля с неверным
// типом остается только замечание о типе.
func mergeIssues(typeIssues, issues []v1.Issue) []v1.Issue {
	byField := make(map[string]v1.Issue, len(typeIssues)+len(issues))
	for _, issue := range issues {
		byField[issue.Path[0]] = issue
	}
	for _, issue := range typeIssues {
		byField[issue.Path[0]] = issue
	}

	merged := make([]v1.Issue, 0, len(byField))
	for _, field := range v1.CreateRequestFields {
		if issue, ok := byField[field]; ok {
			merged = append(merged, issue)
		}
	}
	return merged
}

func sendJSON(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSendResponse, err)
	}
	return nil
}
