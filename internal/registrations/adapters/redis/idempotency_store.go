// Package redis хранит ключи идемпотентности регистраций в Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kioskreg/internal/registrations/ports/services"
	"kioskreg/pkg/logger"
)

// pendingValue помечает ключ, отправка по которому еще не завершена.
const pendingValue = "pending"

// Константы для сообщений об ошибках.
const (
	ErrReserveKey  = "failed to reserve idempotency key"
	ErrCompleteKey = "failed to complete idempotency key"
	ErrReleaseKey  = "failed to release idempotency key"
)

// Client - операции Redis, нужные хранилищу. Ему удовлетворяет *redis.Client из pkg/db/redis.
type Client interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyStore реализует services.IdempotencyStore поверх Redis.
type IdempotencyStore struct {
	client Client
	prefix string
	ttl    time.Duration
}

// NewIdempotencyStore создает хранилище с префиксом ключей prefix.
func NewIdempotencyStore(client Client, prefix string, ttl time.Duration) services.IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *IdempotencyStore) key(key string) string {
	return s.prefix + key
}

// Reserve занимает ключ через SETNX. Если ключ занят, читает ID созданной записи.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, string, error) {
	log := logger.Log(ctx).With(zap.String("method", "IdempotencyStore.Reserve"), zap.String("idempotency_key", key))

	ok, err := s.client.SetNX(ctx, s.key(key), pendingValue, s.ttl)
	if err != nil {
		log.Error(ctx, ErrReserveKey, zap.Error(err))
		return false, "", fmt.Errorf("%s: %w", ErrReserveKey, err)
	}
	if ok {
		return true, "", nil
	}

	value, found, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		log.Error(ctx, ErrReserveKey, zap.Error(err))
		return false, "", fmt.Errorf("%s: %w", ErrReserveKey, err)
	}
	if !found {
		// Ключ истек между SETNX и GET.
		return s.Reserve(ctx, key)
	}
	if value == pendingValue {
		return false, "", nil
	}
	return false, value, nil
}

// Complete записывает ID созданной записи с полным TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key, registrationID string) error {
	if err := s.client.Set(ctx, s.key(key), registrationID, s.ttl); err != nil {
		logger.Log(ctx).Error(ctx, ErrCompleteKey, zap.String("idempotency_key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCompleteKey, err)
	}
	return nil
}

// Release удаляет ключ.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, s.key(key)); err != nil {
		logger.Log(ctx).Error(ctx, ErrReleaseKey, zap.String("idempotency_key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrReleaseKey, err)
	}
	return nil
}
