package wizard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

// ErrAlreadySubmitted возвращается при попытке отправить черновик второй раз.
var ErrAlreadySubmitted = errors.New("registration already submitted")

// SubmissionState - состояние отправки.
type SubmissionState int

// Состояния отправки.
const (
	SubmissionIdle SubmissionState = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RegistrationClient отправляет регистрацию на сервер.
type RegistrationClient interface {
	Create(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) (*v1.Registration, error)
}

// Submission выполняет не более одной отправки: Idle -> Submitting -> Succeeded | Failed.
type Submission struct {
	client RegistrationClient

	mu     sync.Mutex
	state  SubmissionState
	result *v1.Registration
	err    error
	done   chan struct{}
}

// NewSubmission создает отправку в состоянии Idle.
func NewSubmission(client RegistrationClient) *Submission {
	return &Submission{
		client: client,
		done:   make(chan struct{}),
	}
}

// Start запускает отправку в фоне. Повторный вызов возвращает ErrAlreadySubmitted без сетевого запроса.
func (s *Submission) Start(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) error {
	s.mu.Lock()
	if s.state != SubmissionIdle {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.state = SubmissionSubmitting
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go s.run(ctx, idempotencyKey, req)
	return nil
}

// Submit отправляет регистрацию и ждет результата.
func (s *Submission) Submit(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) (*v1.Registration, error) {
	if err := s.Start(ctx, idempotencyKey, req); err != nil {
		return nil, err
	}

	select {
	case <-s.done:
		return s.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Submission) run(ctx context.Context, idempotencyKey string, req v1.CreateRegistrationRequest) {
	log := logger.Log(ctx).With(zap.String("method", "Submission.run"))

	result, err := s.client.Create(ctx, idempotencyKey, req)

	s.mu.Lock()
	if err != nil {
		s.state = SubmissionFailed
		s.err = err
	} else {
		s.state = SubmissionSucceeded
		s.result = result
	}
	s.mu.Unlock()
	close(s.done)

	if err != nil {
		log.Error(ctx, "registration submission failed", zap.Error(err))
		return
	}
	log.Info(ctx, "registration submitted", zap.String("registration_id", result.ID))
}

// State возвращает текущее состояние.
func (s *Submission) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result возвращает итог завершенной отправки.
func (s *Submission) Result() (*v1.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Done закрывается при переходе в Succeeded или Failed.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}
