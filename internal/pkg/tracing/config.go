package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	// ErrTracingEndpointRequired — трейсинг включён, а endpoint не задан.
	ErrTracingEndpointRequired = errors.New("tracing: endpoint обязателен когда tracing включён")
	// ErrTracingEndpointInvalidFormat — endpoint не является URL с хостом.
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint должен быть URL с host (например http://jaeger:4318)")
	// ErrTracingServiceNameRequired — пустое имя сервиса.
	ErrTracingServiceNameRequired = errors.New("tracing: service name обязателен")
	// ErrTracingTimeoutInvalid — таймаут экспорта не положительный.
	ErrTracingTimeoutInvalid = errors.New("tracing: timeout должен быть положительным")
	// ErrTracingSamplingRateInvalid — доля сэмплирования вне [0, 1].
	ErrTracingSamplingRateInvalid = errors.New("tracing: sampling rate должен быть от 0.0 до 1.0")
)

// Config содержит настройки экспорта трейсов по OTLP/HTTP.
type Config struct {
	Enabled bool
	// Endpoint коллектора, например "http://jaeger:4318".
	Endpoint     string
	ServiceName  string
	Version      string
	Environment  string
	Insecure     bool
	Timeout      time.Duration
	SamplingRate float64
}

// Validate проверяет конфигурацию. Выключенный трейсинг всегда валиден.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrTracingEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrTracingEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrTracingServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTracingTimeoutInvalid
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		return fmt.Errorf("%w, получено: %g", ErrTracingSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (трейсинг выключен).
func DefaultConfig() Config {
	return Config{
		ServiceName:  "loopcheck",
		Environment:  "preview",
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
