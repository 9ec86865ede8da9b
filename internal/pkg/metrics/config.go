package metrics

import (
	"net/url"
	"time"
)

// Config содержит настройки метрик.
type Config struct {
	// Enabled включает отправку в Pushgateway после команды.
	Enabled bool

	// PushgatewayURL, например "http://pushgateway:9091".
	PushgatewayURL string

	// JobName группирует метрики в Pushgateway.
	JobName string

	// Timeout — таймаут отправки.
	Timeout time.Duration

	// InstanceLabel переопределяет label instance (по умолчанию hostname).
	InstanceLabel string
}

// Validate проверяет конфигурацию. Отключённые метрики всегда валидны.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.PushgatewayURL == "" {
		return ErrPushgatewayURLRequired
	}
	u, err := url.Parse(c.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
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

// DefaultConfig возвращает конфигурацию по умолчанию (метрики выключены).
func DefaultConfig() Config {
	return Config{
		JobName: "loopcheck",
		Timeout: 10 * time.Second,
	}
}
