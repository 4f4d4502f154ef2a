// Package metrics собирает метрики вызовов events API и отправляет их
// в Prometheus Pushgateway.
//
// NewCollector выбирает реализацию по конфигурации: PrometheusCollector
// при включённых метриках, NopCollector при выключенных.
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик.
// Реализации: PrometheusCollector (активный) и NopCollector (no-op).
// Collector удовлетворяет pagerduty.Recorder.
type Collector interface {
	// RecordTrigger записывает исход и длительность одного CreateTrigger.
	// outcome — одна из меток pagerduty.Outcome*.
	RecordTrigger(outcome string, duration time.Duration)

	// Push отправляет метрики в Pushgateway.
	// Ошибки отправки логируются внутри реализации, метод всегда возвращает nil:
	// недоступный Pushgateway не должен ломать отправку инцидентов.
	Push(ctx context.Context) error
}
