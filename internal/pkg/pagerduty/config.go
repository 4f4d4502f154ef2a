package pagerduty

import (
	"net/url"
	"time"
)

// Значения по умолчанию для клиента events API.
const (
	// DefaultEndpoint — адрес generic events API.
	DefaultEndpoint = "https://events.pagerduty.com/generic/2010-04-15/create_event.json"

	// DefaultTimeout — таймаут HTTP запроса по умолчанию.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent — значение заголовка User-Agent.
	DefaultUserAgent = "pd-trigger/1.0"
)

// Config содержит настройки клиента events API.
type Config struct {
	// Endpoint — URL для POST событий. Пусто — DefaultEndpoint.
	Endpoint string

	// Timeout — таймаут HTTP запроса. 0 — DefaultTimeout.
	Timeout time.Duration

	// UserAgent — заголовок User-Agent. Пусто — DefaultUserAgent.
	UserAgent string
}

// Validate проверяет корректность Config.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if c.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" {
		return ErrEndpointInvalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrEndpointInvalid
	}
	return nil
}

// withDefaults возвращает копию Config с заполненными значениями по умолчанию.
func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}
