package metrics

import (
	"github.com/Kargones/pdtrigger/internal/pkg/logging"
)

// NewCollector выбирает Collector для исходов trigger событий.
// Выключенные метрики дают NopCollector без проверки остальных полей,
// чтобы незаполненный pushgatewayURL не ломал отправку событий.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewPrometheusCollector(config, logger)
}
