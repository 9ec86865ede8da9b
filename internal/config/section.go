package config

import (
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
)

// loadSection возвращает секцию из YAML, если present считает её заданной,
// иначе значения по умолчанию. Переменные окружения применяются поверх;
// ошибка их чтения только логируется.
func loadSection[T any](l *slog.Logger, name string, fromFile *T, present func(*T) bool, defaults func() *T) *T {
	section, source := defaults(), "defaults"
	if fromFile != nil && present(fromFile) {
		section, source = fromFile, "yaml"
	}
	if err := cleanenv.ReadEnv(section); err != nil {
		l.Warn("ошибка чтения переменных окружения секции",
			slog.String("section", name),
			slog.String("error", err.Error()),
		)
	}
	l.Debug("секция конфигурации загружена",
		slog.String("section", name),
		slog.String("source", source),
	)
	return section
}
