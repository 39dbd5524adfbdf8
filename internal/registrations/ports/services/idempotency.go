// Package services defines outbound service interfaces for the registrations service.
package services

import "context"

// IdempotencyStore защищает от повторной обработки одной и той же отправки.
type IdempotencyStore interface {
	// Reserve атомарно занимает ключ. Если ключ уже занят, reserved = false,
	// а registrationID содержит ID созданной записи или пустую строку, пока первая отправка в процессе.
	Reserve(ctx context.Context, key string) (reserved bool, registrationID string, err error)
	// Complete связывает ключ с созданной записью.
	Complete(ctx context.Context, key, registrationID string) error
	// Release освобождает ключ после неудачной отправки.
	Release(ctx context.Context, key string) error
}
