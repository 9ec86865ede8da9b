// Package metrics собирает метрики прогонов и отправляет их в Prometheus.
//
// Однократный запуск (run) отправляет метрики в Pushgateway, режим monitor
// отдаёт их через HTTP /metrics. При отключённых метриках используется
// NopCollector.
package metrics

import (
	"context"
	"net/http"
	"time"
)

// RunStats — итоги одного прогона для метрик.
type RunStats struct {
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Finished time.Time
}

// Collector собирает метрики команд, шагов и прогонов.
type Collector interface {
	// RecordCommandStart отмечает начало команды.
	RecordCommandStart(command string)

	// RecordCommandEnd записывает завершение команды.
	RecordCommandEnd(command string, duration time.Duration, success bool)

	// RecordStep записывает результат одного шага сценария.
	// status — "pass", "fail" или "skip".
	RecordStep(suite, step, status string, duration time.Duration)

	// RecordRun записывает итоги прогона.
	RecordRun(stats RunStats)

	// Push отправляет метрики в Pushgateway. Всегда возвращает nil:
	// ошибки отправки только логируются.
	Push(ctx context.Context) error

	// Handler отдаёт метрики в формате Prometheus.
	Handler() http.Handler
}
