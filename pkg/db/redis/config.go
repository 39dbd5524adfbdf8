// Package redis предоставляет общую обертку клиента Redis.
package redis

import (
	"strconv"
	"time"
)

// Значения по умолчанию.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 6379
	DefaultPoolSize       = 10
	DefaultConnectTimeout = 5 * time.Second
	DefaultTimeout        = 3 * time.Second
)

// Config содержит настройки подключения к Redis.
type Config struct {
	Host           string
	Port           int
	Password       string
	DB             int
	PoolSize       int
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// Address возвращает адрес сервера в виде host:port.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Host == "" {
		out.Host = DefaultHost
	}
	if out.Port == 0 {
		out.Port = DefaultPort
	}
	if out.PoolSize == 0 {
		out.PoolSize = DefaultPoolSize
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = DefaultConnectTimeout
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}
