package di

import (
	"errors"
	"log/slog"
	"os"

	"github.com/Kargones/pdtrigger/internal/config"
	"github.com/Kargones/pdtrigger/internal/pkg/incidentlog"
	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/metrics"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
	"github.com/Kargones/pdtrigger/internal/pkg/tracing"
)

// ErrNilConfig возвращается InitializeApp при cfg == nil.
var ErrNilConfig = errors.New("di: config не задан")

// ClientLogger — логгер клиента events API, метрик, трейсинга и Handler.
// Его записи никогда не зеркалируются в инциденты: сбой доставки
// не должен порождать новый вызов доставки.
type ClientLogger logging.Logger

// ProvideClientLogger создаёт логгер без зеркалирования в инциденты.
//
// Если Config == nil, используются значения logging.DefaultConfig().
func ProvideClientLogger(cfg *config.Config) ClientLogger {
	return logging.NewLogger(loggerConfig(cfg))
}

// loggerConfig накладывает непустые значения из Config на logging.DefaultConfig().
func loggerConfig(cfg *config.Config) logging.Config {
	logCfg := logging.DefaultConfig()
	if cfg == nil {
		return logCfg
	}
	from := cfg.LoggerConfig()
	if from.Level != "" {
		logCfg.Level = from.Level
	}
	if from.Format != "" {
		logCfg.Format = from.Format
	}
	if from.Output != "" {
		logCfg.Output = from.Output
	}
	if from.FilePath != "" {
		logCfg.FilePath = from.FilePath
	}
	// Размер 0 MB не имеет смысла для lumberjack, поэтому 0 — "не задано".
	if from.MaxSize > 0 {
		logCfg.MaxSize = from.MaxSize
	}
	if from.MaxBackups > 0 {
		logCfg.MaxBackups = from.MaxBackups
	}
	if from.MaxAge > 0 {
		logCfg.MaxAge = from.MaxAge
	}
	logCfg.Compress = from.Compress
	return logCfg
}

// MirrorMinLevel — минимальный уровень собственных записей pd-trigger,
// которые при logging.mirrorErrors становятся инцидентами. Не зависит
// от relay.minLevel.
const MirrorMinLevel = slog.LevelError

// ProvideLogger создаёт логгер команд. При logging.mirrorErrors к нему
// подключается incidentlog.SlogHandler: записи уровня MirrorMinLevel и
// выше становятся инцидентами, ошибки их создания печатаются в stderr.
func ProvideLogger(cfg *config.Config, incidents *incidentlog.Handler) logging.Logger {
	logCfg := loggerConfig(cfg)
	if cfg == nil || !cfg.Logging.MirrorErrors || incidents == nil {
		return logging.NewLogger(logCfg)
	}
	mirror := incidentlog.NewSlogHandler(incidents.Clone(incidentlog.WithMinLevel(MirrorMinLevel)),
		incidentlog.WithErrorHandler(incidentlog.StderrErrorHandler(os.Stderr)),
	)
	return logging.NewLogger(logCfg, mirror)
}

// ProvideOutputWriter создаёт OutputWriter на основе outputFormat.
//   - "json": JSONWriter
//   - "text" или пустая строка: TextWriter
func ProvideOutputWriter(cfg *config.Config) output.Writer {
	format := output.FormatText
	if cfg != nil && cfg.OutputFormat != "" {
		format = cfg.OutputFormat
	}
	return output.NewWriter(format)
}

// ProvideTraceID генерирует идентификатор запуска: 32-символьный hex,
// пригодный как OTel trace ID.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideMetricsCollector создаёт Collector на основе секции metrics.
// При ошибке создания возвращает NopCollector и логирует ошибку.
func ProvideMetricsCollector(cfg *config.Config, logger ClientLogger) metrics.Collector {
	if cfg == nil {
		return metrics.NewNopCollector()
	}
	collector, err := metrics.NewCollector(cfg.MetricsCollectorConfig(), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider создаёт и регистрирует OTel TracerProvider.
// При ошибке возвращает nop shutdown и логирует ошибку: трейсинг не
// должен мешать доставке события.
func ProvideTracerProvider(cfg *config.Config, logger ClientLogger) tracing.ShutdownFunc {
	if cfg == nil {
		return tracing.NewNopShutdown()
	}
	shutdown, err := tracing.NewTracerProvider(cfg.TracerConfig(), logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopShutdown()
	}
	return shutdown
}

// ProvidePagerDutyClient создаёт клиент events API с метриками.
// Span-ы пишутся в глобальный TracerProvider, поэтому клиент зависит
// от ProvideTracerProvider только через otel.
func ProvidePagerDutyClient(cfg *config.Config, logger ClientLogger, collector metrics.Collector) (*pagerduty.Client, error) {
	return pagerduty.NewClient(cfg.PagerDutyConfig(), logger, pagerduty.WithRecorder(collector))
}

// ProvideIncidentHandler создаёт Handler с incident_key, атрибуцией и
// минимальным уровнем из конфигурации.
func ProvideIncidentHandler(cfg *config.Config, client *pagerduty.Client, logger ClientLogger) (*incidentlog.Handler, error) {
	opts := []incidentlog.Option{
		incidentlog.WithMinLevel(cfg.RelayMinLevel()),
		incidentlog.WithLogger(logger),
	}
	if cfg.IncidentKey != "" {
		opts = append(opts, incidentlog.WithIncidentKey(cfg.IncidentKey))
	}
	if cfg.Client != "" {
		opts = append(opts, incidentlog.WithClient(cfg.Client))
	}
	if cfg.ClientURL != "" {
		opts = append(opts, incidentlog.WithClientURL(cfg.ClientURL))
	}
	return incidentlog.NewHandler(cfg.ServiceKey, client, opts...)
}
