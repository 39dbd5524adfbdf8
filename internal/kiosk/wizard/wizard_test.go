package wizard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kioskreg/internal/kiosk/wizard"
	v1 "kioskreg/pkg/api/registrations/v1"
)

var errServerUnavailable = errors.New("server unavailable")

// fakeClient считает вызовы и, если задан release, ждет его перед ответом.
type fakeClient struct {
	calls   atomic.Int32
	release chan struct{}
	err     error

	mu   sync.Mutex
	keys []string
	reqs []v1.CreateRegistrationRequest
}

func (c *fakeClient) Create(_ context.Context, key string, req v1.CreateRegistrationRequest) (*v1.Registration, error) {
	c.calls.Add(1)

	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.reqs = append(c.reqs, req)
	c.mu.Unlock()

	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}

	var category *v1.Category
	if req.MentorshipCategory != "" {
		value := v1.Category(req.MentorshipCategory)
		category = &value
	}
	return &v1.Registration{
		ID:                 "reg-1",
		Name:               req.Name,
		RUT:                req.RUT,
		Phone:              req.Phone,
		Email:              req.Email,
		SalesTier:          v1.SalesTier(req.SalesTier),
		MentorshipInterest: v1.Interest(req.MentorshipInterest),
		ActivationInterest: v1.Interest(req.ActivationInterest),
		MentorshipCategory: category,
		CreatedAt:          time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (c *fakeClient) lastRequest() v1.CreateRegistrationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reqs[len(c.reqs)-1]
}

func (c *fakeClient) lastKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[len(c.keys)-1]
}

func validForm() wizard.Form {
	return wizard.Form{
		Name:       "Pedro Soto",
		RUT:        "123456785",
		CompanyRUT: "76086428-5",
		Phone:      "+56912345678",
		Email:      "pedro@soto.cl",
		SalesTier:  string(v1.SalesTierUpTo2400),
	}
}

func validDraft() *wizard.Draft {
	return &wizard.Draft{
		Name:               "Pedro Soto",
		RUT:                "12.345.678-5",
		Phone:              "+56912345678",
		Email:              "pedro@soto.cl",
		SalesTier:          string(v1.SalesTierUpTo2400),
		MentorshipInterest: string(v1.InterestYes),
		ActivationInterest: string(v1.InterestNo),
	}
}

// toConfirmation проводит сессию до экрана подтверждения.
func toConfirmation(t *testing.T, s *wizard.Session, category string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Advance(ctx))
	require.NoError(t, s.Advance(ctx))
	require.NoError(t, s.SubmitForm(ctx, validForm()))
	require.NoError(t, s.SelectServices(ctx, v1.InterestYes, v1.InterestNo))
	require.NoError(t, s.SelectCategory(ctx, category))
	require.Equal(t, wizard.ScreenConfirmation, s.Screen())
}
