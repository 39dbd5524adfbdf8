package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"kioskreg/internal/registrations/adapters/sheets"
	"kioskreg/internal/registrations/config"
	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/resilience"
	v1 "kioskreg/pkg/api/registrations/v1"
)

type appendBody struct {
	Values [][]interface{} `json:"values"`
}

func newRegistration() *entities.Registration {
	reg := entities.NewRegistration(v1.CreateRegistrationRequest{
		Name:               "Pedro Soto",
		RUT:                "12.345.678-5",
		Phone:              "+56912345678",
		Email:              "pedro@soto.cl",
		SalesTier:          string(v1.SalesTierUpTo2400),
		MentorshipInterest: string(v1.InterestYes),
		ActivationInterest: string(v1.InterestNo),
		MentorshipCategory: string(v1.CategoryFinancialServices),
	})
	reg.ID = "reg-1"
	reg.CreatedAt = time.Date(2025, 5, 14, 12, 30, 0, 0, time.UTC)
	return reg
}

func testConfig() *config.SheetsConfig {
	return &config.SheetsConfig{
		Enabled:          true,
		SpreadsheetID:    "sheet-1",
		Range:            "Registros!A:K",
		Timeout:          time.Second,
		ErrorThreshold:   2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		RetryAttempts:    2,
		RetryBackoff:     time.Millisecond,
	}
}

func newExporter(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()

	var got appendBody
	var query string
	srv := newExporter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		query = r.URL.Query().Get("valueInputOption")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	})

	exporter, err := sheets.NewExporter(ctx, testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	require.NoError(t, exporter.Export(ctx, newRegistration()))

	assert.Equal(t, "RAW", query)
	require.Len(t, got.Values, 1)
	assert.Equal(t, []interface{}{
		"2025-05-14 12:30:00", "reg-1", "Pedro Soto", "12.345.678-5", "", "+56912345678",
		"pedro@soto.cl", "0 - 2.400 UF", "si", "no", "Servicios Financieros",
	}, got.Values[0])
}

func TestExporter_RetriesServerErrors(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	srv := newExporter(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"code":503,"message":"unavailable"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	exporter, err := sheets.NewExporter(ctx, testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	require.NoError(t, exporter.Export(ctx, newRegistration()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestExporter_OpensCircuitAfterFailures(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	srv := newExporter(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":400,"message":"bad range"}}`, http.StatusBadRequest)
	})

	exporter, err := sheets.NewExporter(ctx, testConfig(),
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	for range 2 {
		err = exporter.Export(ctx, newRegistration())
		require.Error(t, err)
		assert.Contains(t, err.Error(), sheets.ErrAppendRow)
	}
	assert.Equal(t, int32(2), calls.Load(), "client errors are not retried")

	err = exporter.Export(ctx, newRegistration())
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRow(t *testing.T) {
	reg := newRegistration()
	companyRUT := "76.086.428-5"
	reg.CompanyRUT = &companyRUT
	reg.MentorshipCategory = nil

	row := sheets.Row(reg)
	require.Len(t, row, len(sheets.Header))
	assert.Equal(t, companyRUT, row[4])
	assert.Equal(t, "", row[10])
}
