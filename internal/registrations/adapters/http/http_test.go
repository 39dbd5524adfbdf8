package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "kioskreg/internal/registrations/adapters/http"
	"kioskreg/internal/registrations/adapters/http/middleware"
	"kioskreg/internal/registrations/adapters/memory"
	"kioskreg/internal/registrations/app"
	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/metrics"
	"kioskreg/internal/registrations/ports/repositories"
	v1 "kioskreg/pkg/api/registrations/v1"
)

var errStorage = errors.New("connection refused")

type failingRepository struct{}

func (failingRepository) Create(context.Context, *entities.Registration) error { return errStorage }
func (failingRepository) GetByID(context.Context, string) (*entities.Registration, error) {
	return nil, errStorage
}
func (failingRepository) List(context.Context) ([]*entities.Registration, error) {
	return nil, errStorage
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	metrics *metrics.Metrics
}

func newServer(t *testing.T, repo repositories.RegistrationRepository, pinger stubPinger) *testServer {
	t.Helper()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	usecase := app.NewRegistrationUseCase(repo, memory.NewIdempotencyStore(time.Hour), nil, m)

	fiberApp := fiber.New()
	httpadapter.SetupRouter(fiberApp, httpadapter.RouterDeps{
		Service:  usecase,
		Metrics:  m,
		Gatherer: registry,
		Pinger:   pinger,
	})

	return &testServer{app: fiberApp, metrics: m}
}

func validBody() map[string]any {
	return map[string]any{
		"nombre":                    "Camila Rojas",
		"rut":                       "12.345.678-5",
		"telefono":                  "+56 9 1234 5678",
		"email":                     "camila@pyme.cl",
		"nivel_ventas":              "0 - 2.400 UF",
		"servicio_mentorias":        "si",
		"servicio_jugar_activacion": "no",
		"categoria_mentoria":        "Marketing y Ventas",
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateRegistration(t *testing.T) {
	t.Run("valid payload is stored", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodPost, "/api/registrations", validBody(), nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

		reg := decode[v1.Registration](t, resp)
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, "Camila Rojas", reg.Name)
		assert.Equal(t, "12.345.678-5", reg.RUT)
		assert.Nil(t, reg.CompanyRUT)
		require.NotNil(t, reg.MentorshipCategory)
		assert.Equal(t, v1.CategoryMarketingSales, *reg.MentorshipCategory)
		assert.False(t, reg.CreatedAt.IsZero())
	})

	t.Run("invalid fields are all reported", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		body := validBody()
		body["rut"] = "12.345.678-9"
		body["email"] = "not-an-email"

		resp := srv.do(t, http.MethodPost, "/api/registrations", body, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		assert.Equal(t, v1.ErrorValidationFailed, errResp.Error)
		assert.NotEmpty(t, errResp.Message)
		require.Len(t, errResp.Details, 2)

		paths := []string{errResp.Details[0].Path[0], errResp.Details[1].Path[0]}
		assert.ElementsMatch(t, []string{"rut", "email"}, paths)

		list := srv.do(t, http.MethodGet, "/api/registrations", nil, nil)
		assert.Empty(t, decode[[]v1.Registration](t, list))
		assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.ValidationFailures))
	})

	t.Run("wrong type is reported with other invalid fields", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		body := validBody()
		body["nombre"] = 5
		body["rut"] = "12.345.678-9"
		body["email"] = "not-an-email"

		resp := srv.do(t, http.MethodPost, "/api/registrations", body, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		assert.Equal(t, v1.ErrorValidationFailed, errResp.Error)
		require.Len(t, errResp.Details, 3)

		assert.Equal(t, []string{"nombre"}, errResp.Details[0].Path)
		assert.Equal(t, "invalid_type", errResp.Details[0].Code)
		assert.Equal(t, []string{"rut"}, errResp.Details[1].Path)
		assert.Equal(t, []string{"email"}, errResp.Details[2].Path)

		list := srv.do(t, http.MethodGet, "/api/registrations", nil, nil)
		assert.Empty(t, decode[[]v1.Registration](t, list))
	})

	t.Run("null optional fields are rejected", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		body := validBody()
		body["rut_empresa"] = nil
		body["categoria_mentoria"] = nil

		resp := srv.do(t, http.MethodPost, "/api/registrations", body, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		require.Len(t, errResp.Details, 2)
		for i, field := range []string{"rut_empresa", "categoria_mentoria"} {
			assert.Equal(t, []string{field}, errResp.Details[i].Path)
			assert.Equal(t, "invalid_type", errResp.Details[i].Code)
			assert.Contains(t, errResp.Details[i].Message, "null")
		}
	})

	t.Run("body that is not an object", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodPost, "/api/registrations", `["nombre"]`, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		assert.Equal(t, v1.MessageInvalidBody, errResp.Message)
		assert.Empty(t, errResp.Details)
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodPost, "/api/registrations", `{"nombre":`, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, v1.ErrorValidationFailed, decode[v1.ErrorResponse](t, resp).Error)
	})

	t.Run("persistence failure", func(t *testing.T) {
		srv := newServer(t, failingRepository{}, stubPinger{})

		resp := srv.do(t, http.MethodPost, "/api/registrations", validBody(), nil)
		require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		assert.Equal(t, v1.ErrorInternal, errResp.Error)
		assert.NotContains(t, errResp.Message, errStorage.Error())
	})
}

func TestCreateRegistrationIdempotency(t *testing.T) {
	srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})
	headers := map[string]string{v1.HeaderIdempotencyKey: "kiosk-cycle-1"}

	first := srv.do(t, http.MethodPost, "/api/registrations", validBody(), headers)
	require.Equal(t, fiber.StatusCreated, first.StatusCode)
	assert.Empty(t, first.Header.Get(v1.HeaderIdempotentReplayed))
	created := decode[v1.Registration](t, first)

	second := srv.do(t, http.MethodPost, "/api/registrations", validBody(), headers)
	require.Equal(t, fiber.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(v1.HeaderIdempotentReplayed))
	assert.Equal(t, created.ID, decode[v1.Registration](t, second).ID)

	list := srv.do(t, http.MethodGet, "/api/registrations", nil, nil)
	assert.Len(t, decode[[]v1.Registration](t, list), 1)
}

func TestGetRegistration(t *testing.T) {
	srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

	created := decode[v1.Registration](t, srv.do(t, http.MethodPost, "/api/registrations", validBody(), nil))

	t.Run("existing", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/registrations/"+created.ID, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		got := decode[v1.Registration](t, resp)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Email, got.Email)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/registrations/missing-id", nil, nil)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		errResp := decode[v1.ErrorResponse](t, resp)
		assert.Equal(t, v1.ErrorNotFound, errResp.Error)
		assert.Equal(t, "Registration with id missing-id not found", errResp.Message)
	})
}

func TestListRegistrations(t *testing.T) {
	t.Run("empty store returns empty array", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodGet, "/api/registrations", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("creation order", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		first := validBody()
		first["nombre"] = "Ana"
		second := validBody()
		second["nombre"] = "Beto"
		srv.do(t, http.MethodPost, "/api/registrations", first, nil)
		srv.do(t, http.MethodPost, "/api/registrations", second, nil)

		regs := decode[[]v1.Registration](t, srv.do(t, http.MethodGet, "/api/registrations", nil, nil))
		require.Len(t, regs, 2)
		assert.Equal(t, "Ana", regs[0].Name)
		assert.Equal(t, "Beto", regs[1].Name)
	})

	t.Run("storage failure", func(t *testing.T) {
		srv := newServer(t, failingRepository{}, stubPinger{})

		resp := srv.do(t, http.MethodGet, "/api/registrations", nil, nil)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestOperationalRoutes(t *testing.T) {
	t.Run("healthz ok", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})
		resp := srv.do(t, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("healthz unavailable", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{err: errStorage})
		resp := srv.do(t, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("metrics exposition", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})
		srv.do(t, http.MethodPost, "/api/registrations", validBody(), nil)

		resp := srv.do(t, http.MethodGet, "/metrics", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "kiosk_registrations_created_total 1")
	})

	t.Run("unknown route", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodGet, "/api/unknown", nil, nil)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, v1.ErrorRouteNotFound, decode[v1.ErrorResponse](t, resp).Error)
	})

	t.Run("request id is echoed", func(t *testing.T) {
		srv := newServer(t, memory.NewRegistrationRepository(), stubPinger{})

		resp := srv.do(t, http.MethodGet, "/api/registrations", nil,
			map[string]string{middleware.HeaderRequestID: "req-123"})
		assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))
	})
}
