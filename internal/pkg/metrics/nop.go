package metrics

import (
	"context"
	"time"
)

// NopCollector — no-op реализация Collector.
// Используется когда метрики отключены (Config.Enabled = false).
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordTrigger — no-op.
func (c *NopCollector) RecordTrigger(string, time.Duration) {}

// Push — no-op, всегда возвращает nil.
func (c *NopCollector) Push(context.Context) error {
	return nil
}
