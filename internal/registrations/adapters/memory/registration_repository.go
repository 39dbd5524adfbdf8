// Package memory содержит реализации хранилищ в памяти процесса
// для локального запуска киоска без Postgres и Redis.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kioskreg/internal/registrations/domain/entities"
)

// RegistrationRepository хранит регистрации в map.
type RegistrationRepository struct {
	mu          sync.RWMutex
	byID        map[string]*entities.Registration
	lastCreated time.Time
	now         func() time.Time
}

// NewRegistrationRepository создает пустое хранилище.
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{
		byID: make(map[string]*entities.Registration),
		now:  time.Now,
	}
}

// Create назначает ID и время создания. Время не убывает между вставками.
func (r *RegistrationRepository) Create(_ context.Context, reg *entities.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	if !createdAt.After(r.lastCreated) {
		createdAt = r.lastCreated.Add(time.Microsecond)
	}
	r.lastCreated = createdAt

	reg.ID = uuid.NewString()
	reg.CreatedAt = createdAt

	r.byID[reg.ID] = reg.Clone()
	return nil
}

// GetByID возвращает копию записи или nil, nil.
func (r *RegistrationRepository) GetByID(_ context.Context, id string) (*entities.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return reg.Clone(), nil
}

// List возвращает копии всех записей по возрастанию времени создания.
func (r *RegistrationRepository) List(_ context.Context) ([]*entities.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*entities.Registration, 0, len(r.byID))
	for _, reg := range r.byID {
		regs = append(regs, reg.Clone())
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].CreatedAt.Before(regs[j].CreatedAt)
	})
	return regs, nil
}
