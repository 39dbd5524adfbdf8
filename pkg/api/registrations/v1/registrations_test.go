package v1_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "kioskreg/pkg/api/registrations/v1"
)

func validRequest() v1.CreateRegistrationRequest {
	return v1.CreateRegistrationRequest{
		Name:               "María José",
		RUT:                "12.345.678-5",
		Phone:              "+56912345678",
		Email:              "maria@example.cl",
		SalesTier:          string(v1.SalesTier2400To5000),
		MentorshipInterest: string(v1.InterestYes),
		ActivationInterest: string(v1.InterestNo),
		MentorshipCategory: string(v1.CategoryMarketingSales),
	}
}

func TestCreateRegistrationRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := validRequest()
		issues, err := req.Validate()
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		req := validRequest()
		req.CompanyRUT = ""
		req.MentorshipCategory = ""

		issues, err := req.Validate()
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("missing email yields exactly one issue", func(t *testing.T) {
		req := validRequest()
		req.Email = ""

		issues, err := req.Validate()
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, []string{"email"}, issues[0].Path)
		assert.Equal(t, "El email debe ser válido", issues[0].Message)
	})

	t.Run("every rule is reported", func(t *testing.T) {
		req := v1.CreateRegistrationRequest{
			Name:               "A",
			RUT:                "12345678-9",
			CompanyRUT:         "11111111-2",
			Phone:              "+56812345678",
			Email:              "not-an-email",
			SalesTier:          "0 - 2400 UF",
			MentorshipInterest: "sí",
			ActivationInterest: "yes",
			MentorshipCategory: "servicios financieros",
		}

		issues, err := req.Validate()
		require.NoError(t, err)

		var paths []string
		for _, issue := range issues {
			paths = append(paths, issue.Path[0])
		}
		assert.Equal(t, []string{
			"nombre", "rut", "rut_empresa", "telefono", "email",
			"nivel_ventas", "servicio_mentorias", "servicio_jugar_activacion", "categoria_mentoria",
		}, paths)
	})
}

func TestEnumerations(t *testing.T) {
	for _, tier := range v1.SalesTiers {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, v1.SalesTier("0 - 2.400 uf").Valid())

	assert.True(t, v1.InterestYes.Valid())
	assert.True(t, v1.InterestNo.Valid())
	assert.False(t, v1.Interest("").Valid())

	for i, category := range v1.Categories {
		idx, ok := category.Index()
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}
	assert.False(t, v1.CategoryNone.Valid())
}

func TestParseCategory(t *testing.T) {
	testCases := []struct {
		input    string
		expected v1.Category
		ok       bool
	}{
		{"Marketing y Ventas", v1.CategoryMarketingSales, true},
		{"  innovación y talento ", v1.CategoryInnovationTalent, true},
		{"GESTIÓN Y PRODUCTIVIDAD", v1.CategoryManagementProductivity, true},
		{"", v1.CategoryNone, false},
		{"Cocina", v1.CategoryNone, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := v1.ParseCategory(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCreateRequestFields(t *testing.T) {
	typ := reflect.TypeOf(v1.CreateRegistrationRequest{})
	require.Equal(t, typ.NumField(), len(v1.CreateRequestFields))

	for i := range typ.NumField() {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		assert.Equal(t, name, v1.CreateRequestFields[i])
	}
}
