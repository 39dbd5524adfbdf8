// Package config содержит конфигурацию сервиса регистраций.
package config

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	pkgconfig "kioskreg/pkg/config"
	"kioskreg/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName         = "registrations"
	LogConfigLoaded     = "registrations configuration"
	ErrFailedLoadConfig = "failed to load registrations configuration"
)

// DefaultEnvPath - необязательный .env файл с настройками сервиса.
var DefaultEnvPath = filepath.Join("deploy", ".env")

// Config представляет полную конфигурацию сервиса регистраций.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Health   HealthConfig   `yaml:"health"`
	Storage  StorageConfig  `yaml:"storage"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из DefaultEnvPath и переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, DefaultEnvPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.Bool("health_enabled", cfg.Health.Enabled),
		zap.String("health_address", cfg.Health.GetAddress()),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.Duration("idempotency_ttl", cfg.Redis.IdempotencyTTL),
		zap.Bool("sheets_enabled", cfg.Sheets.Enabled),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}
