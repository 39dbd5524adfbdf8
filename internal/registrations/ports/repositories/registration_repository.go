// Package repositories defines repository interfaces for the registrations service.
package repositories

import (
	"context"

	"kioskreg/internal/registrations/domain/entities"
)

// RegistrationRepository определяет интерфейс хранилища регистраций.
// Create заполняет ID и CreatedAt переданной сущности.
// GetByID возвращает nil, nil, если запись не найдена.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *entities.Registration) error
	GetByID(ctx context.Context, id string) (*entities.Registration, error)
	List(ctx context.Context) ([]*entities.Registration, error)
}
