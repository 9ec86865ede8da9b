package metrics

import "github.com/Kargones/loopcheck/internal/pkg/logging"

// NewCollector возвращает NopCollector при выключенных метриках,
// иначе PrometheusCollector с проверенной конфигурацией.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewPrometheusCollector(config, logger)
}
