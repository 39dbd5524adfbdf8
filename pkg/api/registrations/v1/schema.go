package v1

import (
	"fmt"
	"sync"

	"kioskreg/pkg/validation"
)

// Теги перечислений регистрации.
const (
	TagSalesTier = "salestier"
	TagInterest  = "interest"
	TagCategory  = "category"
)

// Issue - замечание валидации по одному полю.
type Issue = validation.Issue

// Messages - сообщения для посетителя по полям регистрации.
var Messages = validation.Messages{
	"nombre":                    "El nombre debe tener al menos 2 caracteres",
	"rut":                       "El RUT no es válido",
	"rut_empresa":               "El RUT de empresa no es válido",
	"telefono":                  "El teléfono debe ser un número chileno válido (+569XXXXXXXX)",
	"email":                     "El email debe ser válido",
	"nivel_ventas":              "Debes seleccionar un nivel de ventas",
	"servicio_mentorias":        "Debes responder si o no",
	"servicio_jugar_activacion": "Debes responder si o no",
	"categoria_mentoria":        "La categoría de mentoría no es válida",
}

var (
	validatorOnce sync.Once
	validatorInst *validation.Validator
	validatorErr  error
)

// NewValidator создает валидатор со всеми тегами регистрации.
func NewValidator() (*validation.Validator, error) {
	return validation.New(
		validation.WithMembership(TagSalesTier, func(s string) bool { return SalesTier(s).Valid() }),
		validation.WithMembership(TagInterest, func(s string) bool { return Interest(s).Valid() }),
		validation.WithMembership(TagCategory, func(s string) bool { return Category(s).Valid() }),
	)
}

// DefaultValidator возвращает общий экземпляр валидатора.
func DefaultValidator() (*validation.Validator, error) {
	validatorOnce.Do(func() {
		validatorInst, validatorErr = NewValidator()
	})
	return validatorInst, validatorErr
}

// Validate проверяет запрос и возвращает все нарушения.
func (r *CreateRegistrationRequest) Validate() ([]Issue, error) {
	v, err := DefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("registration validator: %w", err)
	}
	return v.Struct(r, Messages)
}
