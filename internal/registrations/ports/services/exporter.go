package services

import (
	"context"

	"kioskreg/internal/registrations/domain/entities"
)

// RegistrationExporter копирует сохраненную регистрацию во внешнюю систему.
type RegistrationExporter interface {
	Export(ctx context.Context, reg *entities.Registration) error
}
