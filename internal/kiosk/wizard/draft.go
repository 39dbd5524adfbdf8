// Package wizard реализует пошаговую регистрацию на киоске: экраны, черновик,
// проверку перед отправкой и однократную отправку на сервер.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	v1 "kioskreg/pkg/api/registrations/v1"
)

// DraftKey - ключ, под которым хранится черновик регистрации.
const DraftKey = "registrationData"

// Константы для сообщений об ошибках.
const (
	ErrEncodeDraft = "failed to encode draft"
	ErrDecodeDraft = "failed to decode draft"
)

// Draft - данные, накопленные шагами мастера до отправки.
type Draft struct {
	Name               string `json:"nombre"`
	RUT                string `json:"rut"`
	CompanyRUT         string `json:"rut_empresa"`
	Phone              string `json:"telefono"`
	Email              string `json:"email"`
	SalesTier          string `json:"nivel_ventas"`
	MentorshipInterest string `json:"servicio_mentorias"`
	ActivationInterest string `json:"servicio_jugar_activacion"`
	MentorshipCategory string `json:"categoria_mentoria"`
}

// Request превращает черновик в тело запроса. Пустые необязательные поля не отправляются.
func (d *Draft) Request() v1.CreateRegistrationRequest {
	return v1.CreateRegistrationRequest{
		Name:               d.Name,
		RUT:                d.RUT,
		CompanyRUT:         d.CompanyRUT,
		Phone:              d.Phone,
		Email:              d.Email,
		SalesTier:          d.SalesTier,
		MentorshipInterest: d.MentorshipInterest,
		ActivationInterest: d.ActivationInterest,
		MentorshipCategory: d.MentorshipCategory,
	}
}

// DraftStore хранит черновик текущего посетителя.
type DraftStore interface {
	// Load возвращает nil, nil, если черновика нет.
	Load(ctx context.Context) (*Draft, error)
	Save(ctx context.Context, draft *Draft) error
	Clear(ctx context.Context) error
}

// MemoryDraftStore хранит черновик одним JSON-документом под DraftKey.
type MemoryDraftStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryDraftStore создает пустое хранилище.
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{blobs: make(map[string][]byte)}
}

// Load читает и разбирает черновик.
func (s *MemoryDraftStore) Load(_ context.Context) (*Draft, error) {
	s.mu.Lock()
	raw, ok := s.blobs[DraftKey]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDecodeDraft, err)
	}
	return &draft, nil
}

// Save сохраняет черновик целиком.
func (s *MemoryDraftStore) Save(_ context.Context, draft *Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrEncodeDraft, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[DraftKey] = raw
	return nil
}

// Clear удаляет черновик.
func (s *MemoryDraftStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, DraftKey)
	return nil
}

// Raw возвращает сохраненный документ как есть.
func (s *MemoryDraftStore) Raw() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.blobs[DraftKey]
	return raw, ok
}

// SetRaw кладет произвольный документ под DraftKey.
func (s *MemoryDraftStore) SetRaw(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[DraftKey] = raw
}
