package config

import (
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
)

// RunConfig — какие сьюты запускать и политика остановки.
type RunConfig struct {
	// Suites — имена сьютов; пусто означает все в порядке регистрации.
	Suites   []string `yaml:"suites" env:"LOOPCHECK_SUITES" env-separator:","`
	FailFast bool     `yaml:"failFast" env:"LOOPCHECK_FAIL_FAST"`
}

func getDefaultRunConfig() *RunConfig {
	return &RunConfig{}
}

func loadRunConfig(l *slog.Logger, cfg *Config) (*RunConfig, error) {
	runConfig := getDefaultRunConfig()
	if cfg.AppConfig != nil {
		*runConfig = cfg.AppConfig.Run
	}
	if err := cleanenv.ReadEnv(runConfig); err != nil {
		return nil, err
	}
	l.Debug("Run конфигурация загружена",
		slog.Any("suites", runConfig.Suites),
		slog.Bool("fail_fast", runConfig.FailFast),
	)
	return runConfig, nil
}
