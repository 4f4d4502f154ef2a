package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/pdtrigger/internal/pkg/apperrors"
	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/textenc"
)

// EnvConfigPath — переменная окружения с путём к YAML файлу конфигурации.
const EnvConfigPath = "PD_CONFIG"

// Ошибки валидации конфигурации.
var (
	ErrServiceKeyRequired  = errors.New("config: service key обязателен (PD_SERVICE_KEY)")
	ErrInvalidLogLevel     = errors.New("config: неизвестный logging.level")
	ErrInvalidLogFormat    = errors.New("config: неизвестный logging.format")
	ErrInvalidMinLevel     = errors.New("config: неизвестный relay.minLevel")
	ErrInvalidOutputFormat = errors.New("config: неизвестный outputFormat")
	ErrConfigFileNotFound  = errors.New("config: файл конфигурации не найден")
)

// Load читает конфигурацию. Если path пуст, используется PD_CONFIG;
// без него конфигурация читается только из переменных окружения.
// Ошибки возвращаются как *apperrors.AppError с кодом CONFIG.LOAD_FAILED.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
				"не удалось прочитать переменные окружения", err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
			fmt.Sprintf("файл конфигурации %q недоступен", path),
			fmt.Errorf("%w: %w", ErrConfigFileNotFound, err))
	}
	// ReadConfig читает файл, затем переменные окружения поверх него.
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigLoad,
			fmt.Sprintf("не удалось прочитать конфигурацию %q", path), err)
	}
	return &cfg, nil
}

// Validate проверяет общие поля конфигурации. Service key проверяется
// отдельно через RequireServiceKey: команде version он не нужен.
// Ошибки возвращаются как *apperrors.AppError с кодом CONFIG.VALIDATION_FAILED.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}

	var minLevel slog.Level
	if err := minLevel.UnmarshalText([]byte(c.Relay.MinLevel)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMinLevel, c.Relay.MinLevel))
	}
	if !output.ValidFormat(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.OutputFormat))
	}
	if _, err := textenc.Lookup(c.InputEncoding); err != nil {
		errs = append(errs, err)
	}

	pd := c.PagerDutyConfig()
	if err := pd.Validate(); err != nil {
		errs = append(errs, err)
	}
	mc := c.MetricsCollectorConfig()
	if err := mc.Validate(); err != nil {
		errs = append(errs, err)
	}
	tc := c.TracerConfig()
	if err := tc.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return apperrors.NewAppError(apperrors.ErrConfigValidate, "конфигурация невалидна", err)
	}
	return nil
}

// RequireServiceKey проверяет, что service key задан.
func (c *Config) RequireServiceKey() error {
	if strings.TrimSpace(c.ServiceKey) == "" {
		return apperrors.NewAppError(apperrors.ErrConfigValidate, "service key не задан", ErrServiceKeyRequired)
	}
	return nil
}

// RelayMinLevel возвращает relay.minLevel как slog.Level.
// Невалидное значение даёт slog.LevelError; Validate сообщает о нём заранее.
func (c *Config) RelayMinLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Relay.MinLevel)); err != nil {
		return slog.LevelError
	}
	return level
}
