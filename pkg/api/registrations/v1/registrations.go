// Package v1 описывает JSON-контракт API регистраций: запросы, ответы,
// перечисления и правила валидации, общие для сервера и киоска.
package v1

import (
	"strings"
	"time"
)

// SalesTier - диапазон годовых продаж в UF.
type SalesTier string

// Допустимые диапазоны продаж.
const (
	SalesTierUpTo2400      SalesTier = "0 - 2.400 UF"
	SalesTier2400To5000    SalesTier = "2.400 - 5.000 UF"
	SalesTier5000To25000   SalesTier = "5.000 - 25.000 UF"
	SalesTier25000To100000 SalesTier = "25.000 - 100.000 UF"
)

// SalesTiers перечисляет диапазоны в порядке возрастания.
var SalesTiers = [...]SalesTier{
	SalesTierUpTo2400,
	SalesTier2400To5000,
	SalesTier5000To25000,
	SalesTier25000To100000,
}

// Valid сообщает, совпадает ли значение с одним из диапазонов.
func (t SalesTier) Valid() bool {
	for _, tier := range SalesTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Interest - ответ "si"/"no" на вопрос об интересе к услуге.
type Interest string

// Допустимые ответы.
const (
	InterestYes Interest = "si"
	InterestNo  Interest = "no"
)

// Valid сообщает, является ли значение "si" или "no".
func (i Interest) Valid() bool {
	return i == InterestYes || i == InterestNo
}

// Category - тема менторства.
type Category string

// Темы менторства. CategoryNone означает, что тема не выбрана.
const (
	CategoryFinancialServices      Category = "Servicios Financieros"
	CategoryMarketingSales         Category = "Marketing y Ventas"
	CategoryManagementProductivity Category = "Gestión y Productividad"
	CategoryInnovationTalent       Category = "Innovación y Talento"
	CategoryNone                   Category = ""
)

// CategoryCount - число тем менторства.
const CategoryCount = 4

// Categories перечисляет темы в порядке отображения.
var Categories = [CategoryCount]Category{
	CategoryFinancialServices,
	CategoryMarketingSales,
	CategoryManagementProductivity,
	CategoryInnovationTalent,
}

// Valid сообщает, является ли значение одной из тем. Пустая тема не считается валидной.
func (c Category) Valid() bool {
	_, ok := c.Index()
	return ok
}

// Index возвращает позицию темы в Categories.
func (c Category) Index() (int, bool) {
	for i, category := range Categories {
		if c == category {
			return i, true
		}
	}
	return 0, false
}

// ParseCategory ищет тему без учета регистра и пробелов по краям.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, category := range Categories {
		if strings.EqualFold(s, string(category)) {
			return category, true
		}
	}
	return CategoryNone, false
}

// HeaderIdempotencyKey - заголовок с ключом идемпотентности отправки.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplayed выставляется, если ответ повторяет ранее созданную запись.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// CreateRegistrationRequest - тело POST /api/registrations.
type CreateRegistrationRequest struct {
	Name               string `json:"nombre" validate:"required,min=2"`
	RUT                string `json:"rut" validate:"required,rut"`
	CompanyRUT         string `json:"rut_empresa,omitempty" validate:"omitempty,rut"`
	Phone              string `json:"telefono" validate:"required,clphone"`
	Email              string `json:"email" validate:"required,email"`
	SalesTier          string `json:"nivel_ventas" validate:"required,salestier"`
	MentorshipInterest string `json:"servicio_mentorias" validate:"required,interest"`
	ActivationInterest string `json:"servicio_jugar_activacion" validate:"required,interest"`
	MentorshipCategory string `json:"categoria_mentoria,omitempty" validate:"omitempty,category"`
}

// CreateRequestFields перечисляет JSON-поля CreateRegistrationRequest в порядке объявления.
// Все поля передаются строками, null не допускается.
var CreateRequestFields = [...]string{
	"nombre",
	"rut",
	"rut_empresa",
	"telefono",
	"email",
	"nivel_ventas",
	"servicio_mentorias",
	"servicio_jugar_activacion",
	"categoria_mentoria",
}

// Registration - сохраненная запись регистрации.
type Registration struct {
	ID                 string    `json:"id"`
	Name               string    `json:"nombre"`
	RUT                string    `json:"rut"`
	CompanyRUT         *string   `json:"rut_empresa"`
	Phone              string    `json:"telefono"`
	Email              string    `json:"email"`
	SalesTier          SalesTier `json:"nivel_ventas"`
	MentorshipInterest Interest  `json:"servicio_mentorias"`
	ActivationInterest Interest  `json:"servicio_jugar_activacion"`
	MentorshipCategory *Category `json:"categoria_mentoria"`
	CreatedAt          time.Time `json:"created_at"`
}

// Значения поля error в ответах с ошибкой.
const (
	ErrorValidationFailed = "Validation failed"
	ErrorNotFound         = "Not found"
	ErrorConflict         = "Conflict"
	ErrorInternal         = "Internal server error"
	ErrorRouteNotFound    = "Route not found"
)

// Значения поля message, не зависящие от запроса.
const (
	MessageInvalidBody = "Request body is not valid JSON"
	MessageInProgress  = "A submission with this idempotency key is still being processed"
	MessageInternal    = "Failed to process registration"
	MessageNotFoundFmt = "Registration with id %s not found"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Message string  `json:"message,omitempty"`
	Details []Issue `json:"details,omitempty"`
}
