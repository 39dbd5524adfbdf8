// Package postgres provides PostgreSQL implementations of repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kioskreg/internal/registrations/domain/entities"
	"kioskreg/internal/registrations/ports/repositories"
	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/logger"
)

// DBTX - подмножество pgxpool.Pool, которое использует репозиторий.
// Ему же удовлетворяет pgxmock.PgxPoolIface.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Константы для сообщений об ошибках.
const (
	ErrCreateRegistration = "failed to create registration"
	ErrGetRegistration    = "failed to get registration"
	ErrListRegistrations  = "failed to list registrations"
	ErrScanRegistration   = "failed to scan registration"
)

const (
	insertRegistrationSQL = `INSERT INTO registrations
    (nombre, rut, rut_empresa, telefono, email, nivel_ventas, servicio_mentorias, servicio_jugar_activacion, categoria_mentoria)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING id, created_at`

	selectRegistrationColumns = `SELECT id, nombre, rut, rut_empresa, telefono, email, nivel_ventas,
    servicio_mentorias, servicio_jugar_activacion, categoria_mentoria, created_at
    FROM registrations`

	getRegistrationSQL   = selectRegistrationColumns + ` WHERE id = $1`
	listRegistrationsSQL = selectRegistrationColumns + ` ORDER BY created_at, id`
)

// RegistrationRepository реализует интерфейс repositories.RegistrationRepository.
type RegistrationRepository struct {
	db DBTX
}

// NewRegistrationRepository создает новый репозиторий регистраций.
func NewRegistrationRepository(db DBTX) repositories.RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create сохраняет регистрацию и заполняет ID и CreatedAt значениями из БД.
func (r *RegistrationRepository) Create(ctx context.Context, reg *entities.Registration) error {
	log := logger.Log(ctx).With(zap.String("method", "RegistrationRepository.Create"))
	log.Debug(ctx, "creating registration")

	var category *string
	if reg.MentorshipCategory != nil {
		value := string(*reg.MentorshipCategory)
		category = &value
	}

	err := r.db.QueryRow(ctx, insertRegistrationSQL,
		reg.Name,
		reg.RUT,
		reg.CompanyRUT,
		reg.Phone,
		reg.Email,
		string(reg.SalesTier),
		string(reg.MentorshipInterest),
		string(reg.ActivationInterest),
		category,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		log.Error(ctx, ErrCreateRegistration, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCreateRegistration, err)
	}

	log.Debug(ctx, "registration created", zap.String("registrationID", reg.ID))
	return nil
}

// GetByID получает регистрацию по ID. Возвращает nil, nil, если записи нет.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*entities.Registration, error) {
	log := logger.Log(ctx).With(zap.String("method", "RegistrationRepository.GetByID"))
	log.Debug(ctx, "getting registration", zap.String("registrationID", id))

	reg, err := scanRegistration(r.db.QueryRow(ctx, getRegistrationSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "registration not found", zap.String("registrationID", id))
			return nil, nil
		}
		log.Error(ctx, ErrGetRegistration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrGetRegistration, err)
	}

	return reg, nil
}

// List возвращает все регистрации по возрастанию времени создания.
func (r *RegistrationRepository) List(ctx context.Context) ([]*entities.Registration, error) {
	log := logger.Log(ctx).With(zap.String("method", "RegistrationRepository.List"))
	log.Debug(ctx, "listing registrations")

	rows, err := r.db.Query(ctx, listRegistrationsSQL)
	if err != nil {
		log.Error(ctx, ErrListRegistrations, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListRegistrations, err)
	}
	defer rows.Close()

	regs := make([]*entities.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			log.Error(ctx, ErrScanRegistration, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrScanRegistration, err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		log.Error(ctx, ErrListRegistrations, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrListRegistrations, err)
	}

	log.Debug(ctx, "registrations listed", zap.Int("count", len(regs)))
	return regs, nil
}

func scanRegistration(row pgx.Row) (*entities.Registration, error) {
	var (
		reg                               entities.Registration
		salesTier, mentorship, activation string
		category                          *string
	)

	err := row.Scan(
		&reg.ID,
		&reg.Name,
		&reg.RUT,
		&reg.CompanyRUT,
		&reg.Phone,
		&reg.Email,
		&salesTier,
		&mentorship,
		&activation,
		&category,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	reg.SalesTier = v1.SalesTier(salesTier)
	reg.MentorshipInterest = v1.Interest(mentorship)
	reg.ActivationInterest = v1.Interest(activation)
	if category != nil {
		value := v1.Category(*category)
		reg.MentorshipCategory = &value
	}
	return &reg, nil
}
