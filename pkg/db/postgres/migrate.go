package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // драйвер миграций
	_ "github.com/golang-migrate/migrate/v4/source/file"       // источник миграций из файлов
	"go.uber.org/zap"

	"kioskreg/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrResolveMigrations       = "failed to resolve migrations path"
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
)

const fileScheme = "file://"

// SourceURL превращает каталог миграций в URL для golang-migrate.
// Значения, уже содержащие схему, возвращаются как есть.
func SourceURL(dir string) (string, error) {
	if strings.Contains(dir, "://") {
		return dir, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrResolveMigrations, err)
	}
	return fileScheme + filepath.ToSlash(abs), nil
}

// Migrate применяет все новые миграции из dir к базе по connURL.
func Migrate(ctx context.Context, connURL, dir string) error {
	log := logger.Log(ctx).With(zap.String("method", "postgres.Migrate"))

	source, err := SourceURL(dir)
	if err != nil {
		log.Error(ctx, ErrResolveMigrations, zap.Error(err))
		return err
	}

	m, err := migrate.New(source, connURL)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err), zap.String("source", source))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn(ctx, "failed to close migration instance", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error(ctx, ErrApplyMigrations, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrApplyMigrations, err)
	}

	log.Info(ctx, LogMigrationsApplied, zap.String("source", source))
	return nil
}
