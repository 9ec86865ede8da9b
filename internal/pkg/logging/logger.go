// Package logging предоставляет интерфейс и реализации для структурированного логирования.
package logging

// Logger определяет интерфейс структурированного логирования.
//
//	logger.Info("Шаг выполнен", "suite", "auth", "step", "login", "duration_ms", 150)
//
// ВАЖНО: Logger пишет только в stderr или файл, никогда в stdout:
// stdout принадлежит OutputWriter и живому отчёту о шагах.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With возвращает новый Logger с добавленными атрибутами.
	With(args ...any) Logger
}

// Ключи атрибутов, общие для всех компонентов.
const (
	KeySuite    = "suite"
	KeyStep     = "step"
	KeyStatus   = "status"
	KeyTraceID  = "trace_id"
	KeyCommand  = "command"
	KeyDuration = "duration_ms"
)

// ForStep возвращает логгер с атрибутами набора и шага.
func ForStep(l Logger, suite, step string) Logger {
	return l.With(KeySuite, suite, KeyStep, step)
}
