// Package schema проверяет входящие регистрации на стороне сервера.
package schema

import (
	"fmt"

	"kioskreg/internal/registrations/domain/entities"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/validation"
)

// ErrSchemaUnavailable возвращается, если валидатор не удалось построить.
const ErrSchemaUnavailable = "registration schema unavailable"

// ValidationError содержит все нарушения правил по полям.
type ValidationError struct {
	Issues []v1.Issue
}

func (e *ValidationError) Error() string {
	return validation.Summary(e.Issues)
}

// Validate проверяет запрос целиком и возвращает готовую к сохранению сущность.
// При ошибке возвращается *ValidationError со всеми нарушениями, частичные данные не возвращаются.
// RUT сохраняются в том виде, в котором пришли.
func Validate(req v1.CreateRegistrationRequest) (*entities.Registration, error) {
	issues, err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSchemaUnavailable, err)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return entities.NewRegistration(req), nil
}
