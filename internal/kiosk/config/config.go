// Package config содержит конфигурацию киоска.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	pkgconfig "kioskreg/pkg/config"
	"kioskreg/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	ServiceName         = "kiosk"
	LogConfigLoaded     = "kiosk configuration"
	ErrFailedLoadConfig = "failed to load kiosk configuration"
)

// DefaultEnvPath - необязательный .env файл с настройками киоска.
var DefaultEnvPath = filepath.Join("deploy", "kiosk.env")

// Config представляет полную конфигурацию киоска.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// APIConfig описывает подключение к сервису регистраций.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"KIOSK_API_BASE_URL" env-default:"http://localhost:5000"`
	Timeout time.Duration `yaml:"timeout" env:"KIOSK_API_TIMEOUT" env-default:"10s"`
}

// LoggingConfig представляет конфигурацию логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"KIOSK_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"KIOSK_LOGGER_MODE" env-default:"production"`
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == string(logger.Development) {
		return logger.Development
	}
	return logger.Production
}

// ShutdownConfig представляет конфигурацию для корректного завершения работы.
type ShutdownConfig struct {
	Timeout int `yaml:"timeout" env:"KIOSK_GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"5"`
}

// GetTimeout возвращает таймаут завершения работы в виде Duration.
func (c *ShutdownConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load загружает конфигурацию из DefaultEnvPath и переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, DefaultEnvPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Duration("api_timeout", cfg.API.Timeout),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode))

	return cfg, nil
}
