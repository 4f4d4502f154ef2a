package metrics

import (
	"net/url"
	"time"
)

// DefaultJobName — job в Pushgateway для семейства метрик pdtrigger_*.
const DefaultJobName = namespace

// DefaultPushTimeout — таймаут отправки в Pushgateway.
const DefaultPushTimeout = 10 * time.Second

// Config описывает, куда pd-trigger отправляет исходы CreateTrigger
// после завершения команды. CLI живёт секунды, поэтому метрики не
// скрейпятся, а дописываются в Pushgateway.
type Config struct {
	// Enabled включает сбор и отправку. false — NopCollector.
	Enabled bool

	// PushgatewayURL, например "http://pushgateway:9091".
	PushgatewayURL string

	// JobName — grouping key "job". Пусто недопустимо при Enabled.
	JobName string

	// Timeout ограничивает один push.
	Timeout time.Duration

	// InstanceLabel — grouping key "instance". Пусто — hostname машины,
	// с которой отправлялись события.
	InstanceLabel string
}

// Validate проверяет Config. Выключенные метрики не проверяются.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.PushgatewayURL == "" {
		return ErrPushgatewayURLRequired
	}
	if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPushgatewayURLInvalid
	}
	if c.JobName == "" {
		return ErrJobNameRequired
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// DefaultConfig возвращает выключенную конфигурацию с job DefaultJobName.
func DefaultConfig() Config {
	return Config{
		JobName: DefaultJobName,
		Timeout: DefaultPushTimeout,
	}
}
