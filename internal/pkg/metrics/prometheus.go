package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Kargones/pdtrigger/internal/pkg/logging"
	"github.com/Kargones/pdtrigger/internal/pkg/redact"
)

// namespace — префикс имён всех метрик.
const namespace = "pdtrigger"

// PrometheusCollector реализует Collector с Prometheus метриками.
// Отправляет метрики в Pushgateway при вызове Push().
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	triggerDuration *prometheus.HistogramVec
	triggerTotal    *prometheus.CounterVec
	lastSuccess     prometheus.Gauge

	// Instance label (hostname)
	instance string
}

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - pdtrigger_trigger_duration_seconds{outcome} (histogram)
//   - pdtrigger_trigger_total{outcome} (counter)
//   - pdtrigger_last_success_timestamp_seconds (gauge)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	// Один HTTP запрос: от десятков миллисекунд до таймаута клиента.
	triggerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trigger_duration_seconds",
			Help:      "Duration of trigger event creation in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	triggerTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_total",
			Help:      "Total number of trigger events by outcome",
		},
		[]string{"outcome"},
	)

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last accepted trigger event",
	})

	// Register вместо MustRegister: ошибка возможна только при дублировании имён.
	collectors := []prometheus.Collector{triggerDuration, triggerTotal, lastSuccess}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:          config,
		logger:          logger,
		registry:        registry,
		triggerDuration: triggerDuration,
		triggerTotal:    triggerTotal,
		lastSuccess:     lastSuccess,
		instance:        instance,
	}, nil
}

// maxLabelLength — максимальная длина значения label.
const maxLabelLength = 64

// sanitizeLabel обрезает значение label до допустимой длины и заменяет
// контрольные символы, которые могут нарушить Prometheus text format.
// Обрезка выполняется по рунам.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordTrigger обновляет histogram и counter для исхода outcome.
func (c *PrometheusCollector) RecordTrigger(outcome string, duration time.Duration) {
	outcome = sanitizeLabel(outcome)

	c.triggerDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	c.triggerTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		c.lastSuccess.SetToCurrentTime()
	}

	c.logger.Debug("metrics: trigger recorded",
		"outcome", outcome,
		"duration_ms", duration.Milliseconds(),
	)
}

// Push отправляет метрики в Pushgateway.
// Возвращает nil даже при ошибке — ошибки логируются.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL not configured, skipping push")
		return nil
	}

	select {
	case <-ctx.Done():
		c.logger.Debug("metrics push отменён")
		return nil
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	// Add (POST) вместо Push (PUT): несколько запусков CLI дописывают
	// свои outcome, а не затирают группу целиком.
	if err := pusher.AddContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", redact.URL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", redact.URL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// GetRegistry возвращает внутренний registry для тестирования.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
