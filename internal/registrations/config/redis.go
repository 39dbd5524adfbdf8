package config

import (
	"strconv"
	"time"
)

// RedisConfig представляет конфигурацию Redis для ключей идемпотентности.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"REGISTRATIONS_REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"REGISTRATIONS_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"REGISTRATIONS_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"REGISTRATIONS_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"REGISTRATIONS_REDIS_DB" env-default:"0"`
	PoolSize       int           `yaml:"pool_size" env:"REGISTRATIONS_REDIS_POOL_SIZE" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"REGISTRATIONS_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	Timeout        time.Duration `yaml:"timeout" env:"REGISTRATIONS_REDIS_TIMEOUT" env-default:"3s"`
	KeyPrefix      string        `yaml:"key_prefix" env:"REGISTRATIONS_REDIS_KEY_PREFIX" env-default:"kiosk:idempotency:"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"REGISTRATIONS_IDEMPOTENCY_TTL" env-default:"24h"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
