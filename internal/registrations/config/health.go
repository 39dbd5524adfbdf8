package config

import (
	"fmt"
	"time"
)

// HealthConfig - конфигурация gRPC сервера проверки здоровья.
type HealthConfig struct {
	Enabled       bool          `yaml:"enabled" env:"REGISTRATIONS_HEALTH_ENABLED" env-default:"true"`
	Host          string        `yaml:"host" env:"REGISTRATIONS_HEALTH_HOST" env-default:"0.0.0.0"`
	Port          int           `yaml:"port" env:"REGISTRATIONS_HEALTH_PORT" env-default:"50061"`
	CheckInterval time.Duration `yaml:"check_interval" env:"REGISTRATIONS_HEALTH_CHECK_INTERVAL" env-default:"10s"`
}

// GetAddress возвращает адрес для gRPC сервера.
func (h *HealthConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
