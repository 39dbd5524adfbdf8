package services

import (
	"context"

	"kioskreg/internal/registrations/domain/entities"
	v1 "kioskreg/pkg/api/registrations/v1"
)

// RegistrationService - операции над регистрациями, доступные транспортному слою.
type RegistrationService interface {
	Create(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) (*entities.Registration, bool, error)
	Get(ctx context.Context, id string) (*entities.Registration, error)
	List(ctx context.Context) ([]*entities.Registration, error)
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}
