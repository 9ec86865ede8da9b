package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/di"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

// Exec — параметры одного выполнения команды.
type Exec struct {
	Command string
	Format  string
	TraceID string
	Start   time.Time
	// Out — куда печатается результат, по умолчанию os.Stdout.
	Out io.Writer
}

// NewExec фиксирует время старта, формат вывода и trace_id из контекста.
func NewExec(ctx context.Context, command string) *Exec {
	traceID := tracing.TraceIDFromContext(ctx)
	// В штатном запуске trace_id кладёт main.go; fallback нужен для прямых вызовов.
	if traceID == "" {
		traceID = tracing.GenerateTraceID()
	}
	return &Exec{
		Command: command,
		Format:  os.Getenv(constants.EnvOutputFormat),
		TraceID: traceID,
		Start:   time.Now(),
		Out:     os.Stdout,
	}
}

// JSON сообщает, запрошен ли JSON вывод.
func (e *Exec) JSON() bool {
	return output.IsJSON(e.Format)
}

// Metadata возвращает метаданные результата.
func (e *Exec) Metadata() *output.Metadata {
	return &output.Metadata{
		DurationMs: time.Since(e.Start).Milliseconds(),
		TraceID:    e.TraceID,
		APIVersion: constants.APIVersion,
	}
}

// Write печатает результат в выбранном формате.
func (e *Exec) Write(result *output.Result) error {
	if result.Command == "" {
		result.Command = e.Command
	}
	if result.Metadata == nil {
		result.Metadata = e.Metadata()
	}
	if err := output.NewWriter(e.Format).Write(e.Out, result); err != nil {
		return apperrors.NewAppError(apperrors.ErrOutputFormat, "не удалось записать результат", err)
	}
	return nil
}

// WriteError печатает структурированную ошибку и возвращает AppError с тем же кодом.
func (e *Exec) WriteError(code, message string, cause error) error {
	if !e.JSON() {
		_, _ = fmt.Fprintf(e.Out, "Ошибка: %s\nКод: %s\n", message, code)
		return apperrors.NewAppError(code, message, cause)
	}

	result := &output.Result{
		Status:  output.StatusError,
		Command: e.Command,
		Error: &output.ErrorInfo{
			Code:    code,
			Message: message,
		},
		Metadata: e.Metadata(),
	}
	if writeErr := output.NewJSONWriter().Write(e.Out, result); writeErr != nil {
		slog.Default().Error("Не удалось записать JSON-ответ об ошибке",
			slog.String("trace_id", e.TraceID),
			slog.String("error", writeErr.Error()))
	}
	return apperrors.NewAppError(code, message, cause)
}

// ResolveApp возвращает App, собранный в main.go, или собирает новый.
// Cleanup вызывается всегда; для App из контекста он пустой.
func ResolveApp(ctx context.Context, cfg *config.Config) (*di.App, func(), error) {
	if app, ok := di.FromContext(ctx); ok {
		return app, func() {}, nil
	}
	if cfg == nil {
		return nil, func() {}, apperrors.NewAppError(apperrors.ErrConfigLoad, "конфигурация не загружена", nil)
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return nil, func() {}, apperrors.NewAppError(apperrors.ErrConfigValidate, "не удалось собрать зависимости", err)
	}
	return app, cleanup, nil
}
