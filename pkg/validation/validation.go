// Package validation оборачивает go-playground/validator и превращает ошибки
// валидации в список замечаний по полям с понятными пользователю сообщениями.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"kioskreg/pkg/phone"
	"kioskreg/pkg/rut"
)

// Теги валидации, регистрируемые по умолчанию.
const (
	TagRUT   = "rut"
	TagPhone = "clphone"
)

// Константы для сообщений об ошибках.
const (
	ErrRegisterTag      = "failed to register validation tag"
	ErrValidateStruct   = "failed to validate struct"
	defaultIssueMessage = "El campo %s no es válido"
)

// Issue описывает одно нарушение правила для поля.
type Issue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// Messages сопоставляет имя поля (JSON) с сообщением для пользователя.
type Messages map[string]string

// Option настраивает валидатор.
type Option func(*validator.Validate) error

// WithMembership регистрирует тег, проверяющий строку функцией valid.
func WithMembership(tag string, valid func(string) bool) Option {
	return func(v *validator.Validate) error {
		return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}
}

// Validator проверяет структуры по тегам validate.
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с тегами rut и clphone и дополнительными опциями.
func New(opts ...Option) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	base := []Option{
		WithMembership(TagRUT, rut.Validate),
		WithMembership(TagPhone, phone.Validate),
	}
	for _, opt := range append(base, opts...) {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrRegisterTag, err)
		}
	}

	return &Validator{validate: v}, nil
}

// Struct проверяет s и возвращает все нарушения в порядке объявления полей.
// Для каждого поля возвращается не более одного замечания.
func (v *Validator) Struct(s any, messages Messages) ([]Issue, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("%s: %w", ErrValidateStruct, err)
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Code:    fe.Tag(),
			Path:    issuePath(fe.Namespace()),
			Message: messageFor(fe.Field(), messages),
		})
	}
	return issues, nil
}

// Summary склеивает замечания в одну строку для поля message ответа.
func Summary(issues []Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, fmt.Sprintf("%s at %q", issue.Message, strings.Join(issue.Path, ".")))
	}
	return "Validation error: " + strings.Join(parts, "; ")
}

func messageFor(field string, messages Messages) string {
	if msg, ok := messages[field]; ok {
		return msg
	}
	return fmt.Sprintf(defaultIssueMessage, field)
}

// issuePath отбрасывает имя корневой структуры из пространства имен.
func issuePath(namespace string) []string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		return parts[1:]
	}
	return parts
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}
