package memory

import (
	"context"
	"sync"
	"time"
)

type idempotencyEntry struct {
	registrationID string
	expiresAt      time.Time
}

// IdempotencyStore - хранилище ключей идемпотентности в памяти с TTL.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewIdempotencyStore создает хранилище, в котором ключи живут ttl.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Reserve занимает ключ, если он свободен или истек.
func (s *IdempotencyStore) Reserve(_ context.Context, key string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		return false, entry.registrationID, nil
	}

	s.entries[key] = idempotencyEntry{expiresAt: now.Add(s.ttl)}
	return true, "", nil
}

// Complete связывает ключ с ID созданной записи.
func (s *IdempotencyStore) Complete(_ context.Context, key, registrationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{
		registrationID: registrationID,
		expiresAt:      s.now().Add(s.ttl),
	}
	return nil
}

// Release освобождает ключ.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
