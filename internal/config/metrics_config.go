package config

import (
	"fmt"
	"log/slog"
	"time"
)

// MetricsConfig содержит настройки Prometheus метрик.
type MetricsConfig struct {
	// Enabled — отправлять ли метрики в Pushgateway после команды.
	Enabled bool `yaml:"enabled" env:"BR_METRICS_ENABLED" env-default:"false"`

	// PushgatewayURL — URL Prometheus Pushgateway, например "http://pushgateway:9091".
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"BR_METRICS_PUSHGATEWAY_URL"`

	// JobName — имя job для группировки метрик.
	JobName string `yaml:"jobName" env:"BR_METRICS_JOB_NAME" env-default:"loopcheck"`

	// Timeout — таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration `yaml:"timeout" env:"BR_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel — переопределение instance label. Пусто — hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"BR_METRICS_INSTANCE"`
}

func isMetricsConfigPresent(cfg *MetricsConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Enabled || cfg.PushgatewayURL != ""
}

// getDefaultMetricsConfig возвращает конфигурацию метрик по умолчанию (выключены).
func getDefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		JobName: "loopcheck",
		Timeout: 10 * time.Second,
	}
}

func validateMetricsConfig(mc *MetricsConfig) error {
	if !mc.Enabled {
		return nil
	}
	if mc.PushgatewayURL == "" {
		return fmt.Errorf("metrics: pushgateway_url обязателен при enabled=true")
	}
	if mc.Timeout <= 0 {
		return fmt.Errorf("metrics: timeout должен быть положительным")
	}
	return nil
}

// loadMetricsConfig берёт секцию metrics из YAML, если она задана. BR_METRICS_* применяются поверх.
func loadMetricsConfig(l *slog.Logger, cfg *Config) *MetricsConfig {
	var fromFile *MetricsConfig
	if cfg.AppConfig != nil {
		fromFile = &cfg.AppConfig.Metrics
	}
	return loadSection(l, "metrics", fromFile, isMetricsConfigPresent, getDefaultMetricsConfig)
}
