// Package config загружает конфигурацию pd-trigger из YAML файла и
// переменных окружения PD_*. Переменные окружения имеют приоритет над файлом.
package config

import (
	"time"

	"github.com/Kargones/pdtrigger/internal/constants"
	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/metrics"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
	"github.com/Kargones/pdtrigger/internal/pkg/tracing"
)

// Config — полная конфигурация приложения.
type Config struct {
	// ServiceKey — ключ интеграции сервиса. Секрет: задавайте через PD_SERVICE_KEY.
	ServiceKey string `yaml:"serviceKey" env:"PD_SERVICE_KEY"`

	// IncidentKey — incident_key по умолчанию для trigger и relay.
	IncidentKey string `yaml:"incidentKey" env:"PD_INCIDENT_KEY"`

	// Client и ClientURL — атрибуция создаваемых событий.
	Client    string `yaml:"client" env:"PD_CLIENT"`
	ClientURL string `yaml:"clientUrl" env:"PD_CLIENT_URL"`

	// OutputFormat — формат вывода команд: "text" или "json".
	OutputFormat string `yaml:"outputFormat" env:"PD_OUTPUT_FORMAT" env-default:"text"`

	// DryRun — trigger показывает payload вместо отправки.
	DryRun bool `yaml:"dryRun" env:"PD_DRY_RUN"`

	// InputEncoding — кодировка stdin: "utf-8", "windows-1251", "koi8-r", ...
	InputEncoding string `yaml:"inputEncoding" env:"PD_INPUT_ENCODING" env-default:"utf-8"`

	API     APIConfig     `yaml:"api"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Relay   RelayConfig   `yaml:"relay"`
}

// APIConfig — настройки HTTP клиента events API.
type APIConfig struct {
	Endpoint  string        `yaml:"endpoint" env:"PD_API_ENDPOINT" env-default:"https://events.pagerduty.com/generic/2010-04-15/create_event.json"`
	Timeout   time.Duration `yaml:"timeout" env:"PD_API_TIMEOUT" env-default:"10s"`
	UserAgent string        `yaml:"userAgent" env:"PD_API_USER_AGENT"`
}

// LoggingConfig — настройки логирования.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"PD_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"PD_LOG_FORMAT" env-default:"text"`
	Output     string `yaml:"output" env:"PD_LOG_OUTPUT" env-default:"stderr"`
	FilePath   string `yaml:"filePath" env:"PD_LOG_FILE_PATH" env-default:"/var/log/pd-trigger.log"`
	MaxSize    int    `yaml:"maxSize" env:"PD_LOG_MAX_SIZE" env-default:"50"`
	MaxBackups int    `yaml:"maxBackups" env:"PD_LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"maxAge" env:"PD_LOG_MAX_AGE" env-default:"14"`

	// Compress без env-default: cleanenv перезаписал бы false из YAML значением по умолчанию.
	Compress bool `yaml:"compress" env:"PD_LOG_COMPRESS"`

	// MirrorErrors — собственные ERROR записи pd-trigger тоже становятся инцидентами.
	MirrorErrors bool `yaml:"mirrorErrors" env:"PD_LOG_MIRROR_ERRORS"`
}

// MetricsConfig — настройки отправки метрик в Pushgateway.
type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled" env:"PD_METRICS_ENABLED"`
	PushgatewayURL string        `yaml:"pushgatewayUrl" env:"PD_METRICS_PUSHGATEWAY_URL"`
	JobName        string        `yaml:"jobName" env:"PD_METRICS_JOB_NAME" env-default:"pdtrigger"`
	Timeout        time.Duration `yaml:"timeout" env:"PD_METRICS_TIMEOUT" env-default:"10s"`
	InstanceLabel  string        `yaml:"instanceLabel" env:"PD_METRICS_INSTANCE"`
}

// TracingConfig — настройки OTLP экспорта span-ов.
type TracingConfig struct {
	Enabled      bool          `yaml:"enabled" env:"PD_TRACING_ENABLED"`
	Endpoint     string        `yaml:"endpoint" env:"PD_TRACING_ENDPOINT"`
	ServiceName  string        `yaml:"serviceName" env:"PD_TRACING_SERVICE_NAME" env-default:"pd-trigger"`
	Environment  string        `yaml:"environment" env:"PD_TRACING_ENVIRONMENT" env-default:"production"`
	Insecure     bool          `yaml:"insecure" env:"PD_TRACING_INSECURE"`
	Timeout      time.Duration `yaml:"timeout" env:"PD_TRACING_TIMEOUT" env-default:"5s"`
	SamplingRate float64       `yaml:"samplingRate" env:"PD_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// RelayConfig — настройки команды relay.
type RelayConfig struct {
	// MinLevel — минимальный уровень записей, становящихся инцидентами.
	MinLevel string `yaml:"minLevel" env:"PD_RELAY_MIN_LEVEL" env-default:"error"`
}

// PagerDutyConfig возвращает настройки клиента events API.
func (c *Config) PagerDutyConfig() pagerduty.Config {
	userAgent := c.API.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgent()
	}
	return pagerduty.Config{
		Endpoint:  c.API.Endpoint,
		Timeout:   c.API.Timeout,
		UserAgent: userAgent,
	}
}

// LoggerConfig возвращает настройки логгера.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
	}
}

// MetricsCollectorConfig возвращает настройки сборщика метрик.
func (c *Config) MetricsCollectorConfig() metrics.Config {
	return metrics.Config{
		Enabled:        c.Metrics.Enabled,
		PushgatewayURL: c.Metrics.PushgatewayURL,
		JobName:        c.Metrics.JobName,
		Timeout:        c.Metrics.Timeout,
		InstanceLabel:  c.Metrics.InstanceLabel,
	}
}

// TracerConfig возвращает настройки TracerProvider.
func (c *Config) TracerConfig() tracing.Config {
	return tracing.Config{
		Enabled:      c.Tracing.Enabled,
		Endpoint:     c.Tracing.Endpoint,
		ServiceName:  c.Tracing.ServiceName,
		Version:      constants.Version,
		Environment:  c.Tracing.Environment,
		Insecure:     c.Tracing.Insecure,
		Timeout:      c.Tracing.Timeout,
		SamplingRate: c.Tracing.SamplingRate,
	}
}
