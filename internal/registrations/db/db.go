// Package db подключает сервис регистраций к Postgres.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"kioskreg/internal/registrations/config"
	"kioskreg/pkg/db/postgres"
	"kioskreg/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing registrations database"
	LogDBInitialized     = "registrations database initialized successfully"
	LogMigrationStarting = "starting database migrations for registrations service"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply registrations database migrations"
	ErrDBConnection      = "failed to connect to registrations database"
	ErrDBCheckConnection = "error checking the database connection"
)

// DB представляет соединение с базой данных регистраций.
type DB struct {
	database *postgres.Database
}

// New применяет миграции из cfg.MigrationsDir и открывает пул соединений.
func New(ctx context.Context, cfg *config.PostgresConfig) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_dir", cfg.MigrationsDir))
	if err := postgres.Migrate(ctx, cfg.GetConnectionURL(), cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	database, err := postgres.New(ctx, cfg.GetDSN(), postgres.PoolOptions{
		MinConns: cfg.MinConn,
		MaxConns: cfg.MaxConn,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{database: database}, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.database.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}
