// Package config содержит конфигурацию приложения.
//
// Источники в порядке приоритета: переменные окружения BR_* / LOOPCHECK_*,
// YAML файл приложения (BR_CONFIG_PATH), значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// AppConfig представляет YAML файл приложения (loopcheck.yaml).
type AppConfig struct {
	Target   TargetConfig   `yaml:"target"`
	Run      RunConfig      `yaml:"run"`
	History  HistoryConfig  `yaml:"history"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Alerting AlertingConfig `yaml:"alerting"`
}

// Config хранит настройки запуска.
type Config struct {
	// Command — имя команды, выставляется CLI.
	Command    string `env:"BR_COMMAND" env-default:""`
	ConfigPath string `env:"BR_CONFIG_PATH" env-default:"loopcheck.yaml"`
	Logger     *slog.Logger

	// AppConfig — содержимое YAML файла, nil если файла нет.
	AppConfig *AppConfig

	TargetConfig   *TargetConfig
	RunConfig      *RunConfig
	HistoryConfig  *HistoryConfig
	MonitorConfig  *MonitorConfig
	LoggingConfig  *LoggingConfig
	MetricsConfig  *MetricsConfig
	TracingConfig  *TracingConfig
	AlertingConfig *AlertingConfig
}

// Overrides — значения флагов командной строки. Пустые поля не применяются.
type Overrides struct {
	BaseURL    string
	Suites     []string
	FailFast   bool
	Seed       bool
	Interval   time.Duration
	Iterations int
	Limit      int
}

// MustLoad читает окружение и YAML файл и собирает Config.
// Ошибка возвращается только если окружение не читается или target невалиден:
// без корректного стенда запускать проверки бессмысленно.
func MustLoad() (*Config, error) {
	var cfg Config
	var err error

	if err = cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения в Config: %w", err)
	}

	l := getSlog(os.Getenv("BR_LOG_LEVEL"))
	cfg.Logger = l

	if cfg.AppConfig, err = loadAppConfig(l, cfg.ConfigPath); err != nil {
		l.Warn("ошибка загрузки конфигурации приложения", slog.String("error", err.Error()))
	}

	if cfg.TargetConfig, err = loadTargetConfig(l, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации target: %w", err)
	}
	if err = validateTargetConfig(cfg.TargetConfig); err != nil {
		return nil, err
	}

	if cfg.RunConfig, err = loadRunConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации run", slog.String("error", err.Error()))
		cfg.RunConfig = getDefaultRunConfig()
	}

	cfg.HistoryConfig = loadHistoryConfig(l, &cfg)
	disableIfInvalid(l, "истории", &cfg.HistoryConfig.Enabled, validateHistoryConfig(cfg.HistoryConfig))

	if cfg.MonitorConfig, err = loadMonitorConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации монитора", slog.String("error", err.Error()))
		cfg.MonitorConfig = getDefaultMonitorConfig()
	}
	if valErr := validateMonitorConfig(cfg.MonitorConfig); valErr != nil {
		l.Warn("невалидная конфигурация монитора, используются значения по умолчанию",
			slog.String("error", valErr.Error()),
		)
		cfg.MonitorConfig = getDefaultMonitorConfig()
	}

	cfg.LoggingConfig = loadLoggingConfig(l, &cfg)

	cfg.MetricsConfig = loadMetricsConfig(l, &cfg)
	disableIfInvalid(l, "метрик", &cfg.MetricsConfig.Enabled, validateMetricsConfig(cfg.MetricsConfig))

	cfg.TracingConfig = loadTracingConfig(l, &cfg)
	disableIfInvalid(l, "трейсинга", &cfg.TracingConfig.Enabled, validateTracingConfig(cfg.TracingConfig))

	cfg.AlertingConfig = loadAlertingConfig(l, &cfg)
	disableIfInvalid(l, "алертинга", &cfg.AlertingConfig.Enabled, validateAlertingConfig(cfg.AlertingConfig))

	return &cfg, nil
}

// ApplyOverrides применяет флаги командной строки поверх загруженной конфигурации.
func (cfg *Config) ApplyOverrides(o Overrides) error {
	if o.BaseURL != "" {
		cfg.TargetConfig.BaseURL = o.BaseURL
		if err := validateTargetConfig(cfg.TargetConfig); err != nil {
			return err
		}
	}
	if len(o.Suites) > 0 {
		cfg.RunConfig.Suites = o.Suites
	}
	if o.FailFast {
		cfg.RunConfig.FailFast = true
	}
	if o.Seed {
		cfg.TargetConfig.Seed = true
	}
	if o.Interval > 0 {
		cfg.MonitorConfig.Interval = o.Interval
	}
	if o.Iterations > 0 {
		cfg.MonitorConfig.MaxIterations = o.Iterations
	}
	if o.Limit > 0 {
		cfg.HistoryConfig.RecentLimit = o.Limit
	}
	return nil
}

// disableIfInvalid выключает необязательную секцию с предупреждением.
func disableIfInvalid(l *slog.Logger, section string, enabled *bool, valErr error) {
	if valErr == nil || !*enabled {
		return
	}
	l.Warn("невалидная конфигурация "+section+", секция отключена",
		slog.String("error", valErr.Error()),
		slog.String("reason", "validation_failed"),
	)
	*enabled = false
}

// loadAppConfig читает YAML файл. Отсутствие файла не ошибка: возвращается nil.
func loadAppConfig(l *slog.Logger, configPath string) (*AppConfig, error) {
	if configPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(configPath) //nolint:gosec // путь задаёт оператор
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Debug("файл конфигурации не найден, используются переменные окружения",
				slog.String("path", configPath),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения %s: %w", configPath, err)
	}

	var appConfig AppConfig
	if err = yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", configPath, err)
	}
	l.Debug("файл конфигурации загружен", slog.String("path", configPath))
	return &appConfig, nil
}

// getSlog создаёт bootstrap логгер для этапа загрузки конфигурации.
// Основной логгер собирается позже из LoggingConfig.
func getSlog(logLevel string) *slog.Logger {
	programLevel := new(slog.LevelVar)
	programLevel.Set(logging.ParseLevel(logLevel))

	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     programLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if s, ok := a.Value.Any().(*slog.Source); ok {
					s.File = path.Base(s.File)
				}
			}
			return a
		},
	}))
	return l.With(slog.Group("app",
		slog.String("name", constants.AppName),
		slog.String("version", constants.Version),
	))
}
