package config

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/loopcheck/internal/constants"
)

// MonitorConfig — параметры непрерывного режима.
type MonitorConfig struct {
	Interval time.Duration `yaml:"interval" env:"LOOPCHECK_MONITOR_INTERVAL"`
	// Listen — адрес HTTP сервера с /metrics и /healthz; пусто отключает сервер.
	Listen string `yaml:"listen" env:"LOOPCHECK_MONITOR_LISTEN"`
	// MaxIterations останавливает монитор после N прогонов; 0 — до сигнала.
	MaxIterations int `yaml:"maxIterations" env:"LOOPCHECK_MONITOR_MAX_ITERATIONS"`
}

func getDefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Interval: constants.DefaultMonitorInterval,
		Listen:   constants.DefaultMonitorListen,
	}
}

func loadMonitorConfig(l *slog.Logger, cfg *Config) (*MonitorConfig, error) {
	monitorConfig := getDefaultMonitorConfig()
	if cfg.AppConfig != nil {
		if cfg.AppConfig.Monitor.Interval > 0 {
			monitorConfig.Interval = cfg.AppConfig.Monitor.Interval
		}
		if cfg.AppConfig.Monitor.Listen != "" {
			monitorConfig.Listen = cfg.AppConfig.Monitor.Listen
		}
		monitorConfig.MaxIterations = cfg.AppConfig.Monitor.MaxIterations
	}
	if err := cleanenv.ReadEnv(monitorConfig); err != nil {
		return nil, err
	}
	l.Debug("Monitor конфигурация загружена",
		slog.Duration("interval", monitorConfig.Interval),
		slog.String("listen", monitorConfig.Listen),
	)
	return monitorConfig, nil
}

func validateMonitorConfig(mc *MonitorConfig) error {
	if mc.Interval < time.Second {
		return fmt.Errorf("monitor: interval должен быть не меньше секунды, получено %s", mc.Interval)
	}
	if mc.MaxIterations < 0 {
		return fmt.Errorf("monitor: max iterations не может быть отрицательным")
	}
	if mc.Listen != "" {
		if _, _, err := net.SplitHostPort(mc.Listen); err != nil {
			return fmt.Errorf("monitor: некорректный адрес %q: %w", mc.Listen, err)
		}
	}
	return nil
}
