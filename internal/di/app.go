package di

import (
	"context"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/adapter/realtime"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/history"
	"github.com/Kargones/loopcheck/internal/pkg/alerting"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/suites"
)

// App содержит инициализированные зависимости приложения.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config передаётся извне через InitializeApp().
	Config *config.Config

	Logger       logging.Logger
	OutputWriter output.Writer

	// TraceID коррелирует логи, алерты и span-ы одного запуска.
	TraceID string

	// Alerter — NopAlerter при отключённом алертинге.
	Alerter alerting.Alerter

	// MetricsCollector — NopCollector при отключённых метриках.
	MetricsCollector metrics.Collector

	// TracerShutdown отправляет буферизированные span-ы.
	TracerShutdown func(context.Context) error

	Client *loopync.Client
	// Probe — nil, если адрес Socket.IO не выводится из конфигурации.
	Probe        *realtime.Probe
	SuiteOptions suites.Options

	// History — NopStore при отключённой истории, UnavailableStore при недоступной базе.
	History history.Store
	Runner  *scenario.Runner
}

type appKey struct{}

// WithApp кладёт App в контекст команды.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// FromContext возвращает App из контекста.
func FromContext(ctx context.Context) (*App, bool) {
	app, ok := ctx.Value(appKey{}).(*App)
	return app, ok && app != nil
}
