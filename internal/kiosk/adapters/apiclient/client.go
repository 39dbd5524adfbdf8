// Package apiclient реализует клиент REST API регистраций для киоска.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v3/client"
	"go.uber.org/zap"

	"kioskreg/internal/kiosk/config"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

// Путь ресурса регистраций.
const registrationsPath = "/api/registrations"

// Константы для сообщений об ошибках.
const (
	ErrSendRequest    = "failed to send request"
	ErrDecodeResponse = "failed to decode response"
)

// APIError - ответ сервера с кодом вне 2xx.
type APIError struct {
	Status int
	Body   v1.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("registrations api: %d %s: %s", e.Status, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("registrations api: %d %s", e.Status, e.Body.Error)
}

// Client вызывает API регистраций.
type Client struct {
	http *client.Client
}

// New создает клиент по настройкам киоска.
func New(cfg *config.APIConfig) *Client {
	c := client.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	return &Client{http: c}
}

// Create отправляет регистрацию с ключом идемпотентности. Пустой ключ не отправляется.
func (c *Client) Create(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) (*v1.Registration, error) {
	log := logger.Log(ctx).With(zap.String("method", "Client.Create"))
	log.Debug(ctx, "sending registration", zap.String("idempotency_key", idempotencyKey))

	r := c.http.R().SetContext(ctx).SetJSON(req)
	if idempotencyKey != "" {
		r.SetHeader(v1.HeaderIdempotencyKey, idempotencyKey)
	}

	resp, err := r.Post(registrationsPath)
	if err != nil {
		log.Error(ctx, ErrSendRequest, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrSendRequest, err)
	}
	defer resp.Close()

	var reg v1.Registration
	if err := decode(resp, http.StatusCreated, &reg); err != nil {
		log.Error(ctx, "registration rejected", zap.Error(err))
		return nil, err
	}

	log.Debug(ctx, "registration stored", zap.String("registration_id", reg.ID),
		zap.Bool("replayed", resp.Header(v1.HeaderIdempotentReplayed) == "true"))
	return &reg, nil
}

// Get получает регистрацию по ID.
func (c *Client) Get(ctx context.Context, id string) (*v1.Registration, error) {
	resp, err := c.http.R().SetContext(ctx).Get(registrationsPath + "/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSendRequest, err)
	}
	defer resp.Close()

	var reg v1.Registration
	if err := decode(resp, http.StatusOK, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// List получает все регистрации.
func (c *Client) List(ctx context.Context) ([]v1.Registration, error) {
	resp, err := c.http.R().SetContext(ctx).Get(registrationsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSendRequest, err)
	}
	defer resp.Close()

	var regs []v1.Registration
	if err := decode(resp, http.StatusOK, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// decode разбирает тело ответа с ожидаемым кодом или возвращает *APIError.
func decode(resp *client.Response, expected int, out any) error {
	if resp.StatusCode() != expected {
		apiErr := &APIError{Status: resp.StatusCode()}
		if err := json.Unmarshal(resp.Body(), &apiErr.Body); err != nil || apiErr.Body.Error == "" {
			apiErr.Body = v1.ErrorResponse{Error: http.StatusText(resp.StatusCode()), Message: string(resp.Body())}
		}
		return apiErr
	}

	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("%s: %w", ErrDecodeResponse, err)
	}
	return nil
}
