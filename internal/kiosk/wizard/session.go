package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

// Screen - экран мастера регистрации.
type Screen int

// Экраны в порядке прохождения.
const (
	ScreenStart Screen = iota
	ScreenWelcome
	ScreenRegistrationForm
	ScreenServiceSelection
	ScreenCategorySelection
	ScreenConfirmation
)

func (s Screen) String() string {
	switch s {
	case ScreenStart:
		return "start"
	case ScreenWelcome:
		return "welcome"
	case ScreenRegistrationForm:
		return "registration_form"
	case ScreenServiceSelection:
		return "service_selection"
	case ScreenCategorySelection:
		return "category_selection"
	case ScreenConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// View - состояние экрана подтверждения.
type View int

// Состояния экрана подтверждения.
const (
	ViewNone View = iota
	ViewDataIncomplete
	ViewPending
	ViewSucceeded
	ViewFailed
)

func (v View) String() string {
	switch v {
	case ViewNone:
		return "none"
	case ViewDataIncomplete:
		return "data_incomplete"
	case ViewPending:
		return "pending"
	case ViewSucceeded:
		return "succeeded"
	case ViewFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Надписи экрана подтверждения.
const (
	LabelPending        = "Guardando..."
	LabelSelected       = "Seleccionaste"
	LabelScanQR         = "Escanea el código QR y agenda con tu celular"
	LabelIncomplete     = "Datos incompletos"
	LabelFailed         = "Error al guardar el registro"
	LabelAskStaff       = "No se pudo completar el registro en este momento. Por favor, solicita ayuda al personal de apoyo."
	LabelIncompleteHint = "No se detectaron todos los datos necesarios para completar el registro. Por favor, comienza nuevamente desde el inicio."
)

// Ошибки переходов.
var (
	ErrInvalidTransition = errors.New("invalid wizard transition")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrHandoffRequired   = errors.New("staff handoff required before returning to start")
)

// LogStaffHandoff - сообщение с данными регистрации для ручного восстановления.
const LogStaffHandoff = "registration payload for staff assistance"

// Confirmation - то, что показывает экран подтверждения.
type Confirmation struct {
	View         View
	Category     v1.Category
	Label        string
	QR           QRAsset
	Registration *v1.Registration
	Err          error
}

// Session - состояние мастера для одного посетителя. Черновик живет в DraftStore,
// каждый цикл регистрации получает новый ключ идемпотентности.
type Session struct {
	drafts DraftStore
	client RegistrationClient

	mu         sync.Mutex
	screen     Screen
	key        string
	submission *Submission
	incomplete *DraftIncompleteError
	category   v1.Category
	handedOff  bool
}

// NewSession создает сессию на стартовом экране.
func NewSession(drafts DraftStore, client RegistrationClient) *Session {
	return &Session{
		drafts:     drafts,
		client:     client,
		screen:     ScreenStart,
		key:        uuid.NewString(),
		submission: NewSubmission(client),
	}
}

// Screen возвращает текущий экран.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// IdempotencyKey возвращает ключ текущего цикла регистрации.
func (s *Session) IdempotencyKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Submission возвращает отправку текущего цикла.
func (s *Session) Submission() *Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// Advance переходит Start -> Welcome -> RegistrationForm.
func (s *Session) Advance(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.screen {
	case ScreenStart:
		s.screen = ScreenWelcome
	case ScreenWelcome:
		s.screen = ScreenRegistrationForm
	default:
		return s.invalid("advance")
	}
	return nil
}

// SubmitForm проверяет форму, записывает ее в черновик и открывает выбор услуг.
// При ошибках в полях возвращается *ValidationError, экран не меняется.
func (s *Session) SubmitForm(ctx context.Context, form Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenRegistrationForm {
		return s.invalid("submit form")
	}
	if err := form.Validate(); err != nil {
		return err
	}

	draft, err := s.loadDraft(ctx)
	if err != nil {
		return err
	}
	form.apply(draft)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return err
	}

	s.screen = ScreenServiceSelection
	return nil
}

// SelectServices сохраняет ответы об интересе к услугам.
func (s *Session) SelectServices(ctx context.Context, mentorship, activation v1.Interest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenServiceSelection {
		return s.invalid("select services")
	}
	if !mentorship.Valid() || !activation.Valid() {
		return fmt.Errorf("%w: services %q, %q", ErrInvalidSelection, mentorship, activation)
	}

	draft, err := s.loadDraft(ctx)
	if err != nil {
		return err
	}
	draft.MentorshipInterest = string(mentorship)
	draft.ActivationInterest = string(activation)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return err
	}

	s.screen = ScreenCategorySelection
	return nil
}

// SelectCategory сохраняет тему менторства. Пустая строка означает "без темы".
func (s *Session) SelectCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenCategorySelection {
		return s.invalid("select category")
	}

	selected := v1.CategoryNone
	if category != "" {
		c, ok := v1.ParseCategory(category)
		if !ok {
			return fmt.Errorf("%w: category %q", ErrInvalidSelection, category)
		}
		selected = c
	}

	draft, err := s.loadDraft(ctx)
	if err != nil {
		return err
	}
	draft.MentorshipCategory = string(selected)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return err
	}

	s.screen = ScreenConfirmation
	return nil
}

// Confirm читает черновик один раз, проверяет его и запускает единственную отправку.
// Незаполненный черновик дает *DraftIncompleteError и состояние DataIncomplete.
func (s *Session) Confirm(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.screen != ScreenConfirmation {
		return ViewNone, s.invalid("confirm")
	}
	if s.incomplete != nil || s.submission.State() != SubmissionIdle {
		return s.viewLocked(), ErrAlreadySubmitted
	}

	draft, err := s.drafts.Load(ctx)
	if err != nil {
		logger.Log(ctx).Warn(ctx, "failed to read registration draft", zap.Error(err))
		draft = nil
	}

	if err := CheckDraft(draft); err != nil {
		var incomplete *DraftIncompleteError
		errors.As(err, &incomplete)
		s.incomplete = incomplete
		logger.Log(ctx).Warn(ctx, "registration draft rejected", zap.Strings("missing", incomplete.Missing))
		return ViewDataIncomplete, err
	}

	s.category = v1.Category(draft.MentorshipCategory)
	if err := s.submission.Start(ctx, s.key, draft.Request()); err != nil {
		return s.viewLocked(), err
	}
	return ViewPending, nil
}

// View возвращает состояние экрана подтверждения.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	if s.screen != ScreenConfirmation {
		return ViewNone
	}
	if s.incomplete != nil {
		return ViewDataIncomplete
	}

	switch s.submission.State() {
	case SubmissionSubmitting:
		return ViewPending
	case SubmissionSucceeded:
		return ViewSucceeded
	case SubmissionFailed:
		return ViewFailed
	default:
		return ViewNone
	}
}

// Wait ждет завершения отправки и возвращает итоговое состояние.
func (s *Session) Wait(ctx context.Context) (View, error) {
	submission := s.Submission()

	select {
	case <-submission.Done():
		return s.View(), nil
	case <-ctx.Done():
		return s.View(), ctx.Err()
	}
}

// Confirmation описывает содержимое экрана подтверждения.
func (s *Session) Confirmation() Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.viewLocked()
	out := Confirmation{View: view, Category: s.category}

	switch view {
	case ViewDataIncomplete:
		out.Label = LabelIncomplete
		out.QR = DefaultQR
		out.Err = s.incomplete
	case ViewPending:
		out.Label = LabelPending
		out.QR = QRFor(string(s.category))
	case ViewSucceeded:
		out.Label = SelectedLabel(s.category)
		out.QR = QRFor(string(s.category))
		out.Registration, _ = s.submission.Result()
	case ViewFailed:
		out.Label = LabelFailed
		out.QR = DefaultQR
		_, out.Err = s.submission.Result()
	}
	return out
}

// SelectedLabel возвращает надпись "Seleccionaste <тема>".
func SelectedLabel(category v1.Category) string {
	if category == v1.CategoryNone {
		return LabelSelected
	}
	return LabelSelected + " " + string(category)
}

// StaffHandoff выводит данные регистрации в журнал для персонала после неудачной отправки.
// Черновик при этом сохраняется.
func (s *Session) StaffHandoff(ctx context.Context) (v1.CreateRegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewLocked() != ViewFailed {
		return v1.CreateRegistrationRequest{}, s.invalid("staff handoff")
	}

	draft, err := s.drafts.Load(ctx)
	if err != nil {
		return v1.CreateRegistrationRequest{}, err
	}
	if draft == nil {
		draft = &Draft{}
	}

	payload := draft.Request()
	logger.Log(ctx).Warn(ctx, LogStaffHandoff,
		zap.String("idempotency_key", s.key),
		zap.Any("registration", payload))

	s.handedOff = true
	return payload, nil
}

// ReturnToStart очищает черновик и начинает новый цикл.
// Доступно из DataIncomplete, Succeeded и из Failed после StaffHandoff.
func (s *Session) ReturnToStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.viewLocked() {
	case ViewDataIncomplete, ViewSucceeded:
	case ViewFailed:
		if !s.handedOff {
			return ErrHandoffRequired
		}
	default:
		return s.invalid("return to start")
	}

	if err := s.drafts.Clear(ctx); err != nil {
		return err
	}

	s.screen = ScreenStart
	s.key = uuid.NewString()
	s.submission = NewSubmission(s.client)
	s.incomplete = nil
	s.category = v1.CategoryNone
	s.handedOff = false
	return nil
}

func (s *Session) loadDraft(ctx context.Context) (*Draft, error) {
	draft, err := s.drafts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = &Draft{}
	}
	return draft, nil
}

func (s *Session) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, s.screen)
}
