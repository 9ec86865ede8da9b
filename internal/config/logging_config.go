package config

import (
	"log/slog"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// LoggingConfig содержит настройки логирования. Значения по умолчанию
// берутся из logging.Default*.
type LoggingConfig struct {
	// Level - уровень логирования (debug, info, warn, error)
	Level string `yaml:"level" env:"BR_LOG_LEVEL" env-default:"info"`

	// Format - формат логов (json, text)
	Format string `yaml:"format" env:"BR_LOG_FORMAT" env-default:"text"`

	// Output - вывод логов (stderr, file)
	Output string `yaml:"output" env:"BR_LOG_OUTPUT" env-default:"stderr"`

	// FilePath - путь к файлу логов (если output=file)
	FilePath string `yaml:"filePath" env:"BR_LOG_FILE_PATH"`

	// MaxSize - максимальный размер файла лога в MB
	MaxSize int `yaml:"maxSize" env:"BR_LOG_MAX_SIZE" env-default:"50"`

	// MaxBackups - максимальное количество backup файлов
	MaxBackups int `yaml:"maxBackups" env:"BR_LOG_MAX_BACKUPS" env-default:"5"`

	// MaxAge - максимальный возраст backup файлов в днях
	MaxAge int `yaml:"maxAge" env:"BR_LOG_MAX_AGE" env-default:"14"`

	// Compress - сжимать ли backup файлы
	Compress bool `yaml:"compress" env:"BR_LOG_COMPRESS" env-default:"true"`

	// AddSource добавляет файл:строку в записи лога.
	AddSource bool `yaml:"addSource" env:"BR_LOG_ADD_SOURCE"`
}

// loadLoggingConfig берёт секцию logging из YAML, если она задана. BR_LOG_* применяются поверх.
func loadLoggingConfig(l *slog.Logger, cfg *Config) *LoggingConfig {
	var fromFile *LoggingConfig
	if cfg.AppConfig != nil {
		fromFile = &cfg.AppConfig.Logging
	}
	return loadSection(l, "logging", fromFile, isLoggingConfigPresent, getDefaultLoggingConfig)
}

func isLoggingConfigPresent(cfg *LoggingConfig) bool {
	return *cfg != LoggingConfig{}
}

func getDefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:      logging.DefaultLevel,
		Format:     logging.DefaultFormat,
		Output:     logging.DefaultOutput,
		FilePath:   logging.DefaultFilePath,
		MaxSize:    logging.DefaultMaxSize,
		MaxBackups: logging.DefaultMaxBackups,
		MaxAge:     logging.DefaultMaxAge,
		Compress:   logging.DefaultCompress,
	}
}
