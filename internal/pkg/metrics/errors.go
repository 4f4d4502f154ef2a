package metrics

import "errors"

var (
	// ErrPushgatewayURLRequired возвращается если не указан URL Pushgateway при включённых метриках.
	ErrPushgatewayURLRequired = errors.New("metrics: pushgateway URL is required when metrics enabled")

	// ErrJobNameRequired возвращается если не указано имя job.
	ErrJobNameRequired = errors.New("metrics: job name is required")

	// ErrInvalidTimeout возвращается если указан невалидный таймаут.
	ErrInvalidTimeout = errors.New("metrics: timeout must be positive")

	// ErrPushgatewayURLInvalid возвращается если URL Pushgateway имеет невалидный формат.
	ErrPushgatewayURLInvalid = errors.New("metrics: pushgateway URL has invalid format")
)
