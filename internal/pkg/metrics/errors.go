package metrics

import "errors"

var (
	// ErrPushgatewayURLRequired — метрики включены, но URL Pushgateway не задан.
	ErrPushgatewayURLRequired = errors.New("pushgateway URL is required when metrics enabled")

	// ErrPushgatewayURLInvalid — URL Pushgateway не разбирается или без хоста.
	ErrPushgatewayURLInvalid = errors.New("pushgateway URL has invalid format")

	// ErrJobNameRequired — не задано имя job.
	ErrJobNameRequired = errors.New("job name is required")

	// ErrInvalidTimeout — таймаут отправки не положительный.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)
