package config

import (
	"fmt"
	"log/slog"
	"time"
)

// HistoryConfig — хранилище истории прогонов в MSSQL.
type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled" env:"BR_HISTORY_ENABLED"`
	Server   string `yaml:"server" env:"BR_HISTORY_SERVER"`
	Port     int    `yaml:"port" env:"BR_HISTORY_PORT" env-default:"1433"`
	User     string `yaml:"user" env:"BR_HISTORY_USER"`
	Password string `yaml:"password" env:"MSSQL_PASSWORD"`
	Database string `yaml:"database" env:"BR_HISTORY_DATABASE" env-default:"loopcheck"`
	// Encrypt включает TLS к серверу. bool с env-default "true" перезаписывает
	// false из YAML, если переменная не задана; для отключения нужен env.
	Encrypt bool          `yaml:"encrypt" env:"BR_HISTORY_ENCRYPT" env-default:"true"`
	Timeout time.Duration `yaml:"timeout" env:"BR_HISTORY_TIMEOUT" env-default:"30s"`
	// RecentLimit — сколько прогонов показывает команда history.
	RecentLimit int `yaml:"recentLimit" env:"BR_HISTORY_RECENT_LIMIT" env-default:"20"`
}

func isHistoryConfigPresent(cfg *HistoryConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Enabled || cfg.Server != ""
}

func getDefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Port:        1433,
		Database:    "loopcheck",
		Encrypt:     true,
		Timeout:     30 * time.Second,
		RecentLimit: 20,
	}
}

func validateHistoryConfig(hc *HistoryConfig) error {
	if !hc.Enabled {
		return nil
	}
	if hc.Server == "" {
		return fmt.Errorf("history: server обязателен при enabled=true")
	}
	if hc.Port < 1 || hc.Port > 65535 {
		return fmt.Errorf("history: некорректный порт %d", hc.Port)
	}
	if hc.Database == "" {
		return fmt.Errorf("history: database обязателен")
	}
	if hc.Timeout <= 0 {
		return fmt.Errorf("history: timeout должен быть положительным")
	}
	return nil
}

// loadHistoryConfig берёт секцию history из YAML, если она задана. BR_HISTORY_* применяются поверх.
func loadHistoryConfig(l *slog.Logger, cfg *Config) *HistoryConfig {
	var fromFile *HistoryConfig
	if cfg.AppConfig != nil {
		fromFile = &cfg.AppConfig.History
	}
	return loadSection(l, "history", fromFile, isHistoryConfigPresent, getDefaultHistoryConfig)
}
