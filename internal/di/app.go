package di

import (
	"context"
	"errors"

	"github.com/Kargones/pdtrigger/internal/config"
	"github.com/Kargones/pdtrigger/internal/pkg/incidentlog"
	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/metrics"
	"github.com/Kargones/pdtrigger/internal/pkg/output"
	"github.com/Kargones/pdtrigger/internal/pkg/pagerduty"
	"github.com/Kargones/pdtrigger/internal/pkg/tracing"
)

// App содержит инициализированные зависимости приложения.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит конфигурацию приложения.
	// Передаётся извне через InitializeApp().
	Config *config.Config

	// Logger — логгер команд. При logging.mirrorErrors его ERROR записи
	// дополнительно становятся инцидентами.
	Logger logging.Logger

	// ClientLogger — логгер без зеркалирования. Через него пишутся
	// сбои доставки событий, чтобы не порождать повторный вызов API.
	ClientLogger ClientLogger

	// OutputWriter форматирует результаты команд.
	// Создаётся через ProvideOutputWriter на основе outputFormat.
	OutputWriter output.Writer

	// TraceID — идентификатор запуска для корреляции логов и span-ов.
	TraceID string

	// Client отправляет trigger события в events API.
	Client *pagerduty.Client

	// Incidents превращает лог-записи в инциденты (команда relay).
	Incidents *incidentlog.Handler

	// MetricsCollector собирает метрики вызовов events API.
	// Если метрики отключены — используется NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown завершает OTel TracerProvider и отправляет буферизированные span-ы.
	// Если трейсинг отключён — nop function.
	TracerShutdown tracing.ShutdownFunc
}

// Close отправляет метрики и завершает трейсинг.
// Вызывается один раз в конце команды; ctx ограничивает общее время.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.MetricsCollector != nil {
		if err := a.MetricsCollector.Push(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.TracerShutdown != nil {
		if err := a.TracerShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
