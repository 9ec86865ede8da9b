// Package monitorhandler реализует команду monitor: прогоны по расписанию
// с HTTP эндпоинтами /metrics и /healthz.
package monitorhandler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/di"
	"github.com/Kargones/loopcheck/internal/monitor"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/progress"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/suites"
)

func RegisterCmd() error {
	return command.Register(&MonitorHandler{})
}

// Data — итог работы монитора после остановки.
type Data struct {
	Iterations int             `json:"iterations"`
	Last       *monitor.Status `json:"last,omitempty"`
}

// WriteText печатает итог последней итерации.
func (d *Data) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Итераций: %d\n", d.Iterations); err != nil {
		return err
	}
	if d.Last == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "Последний прогон %s: pass=%d fail=%d skip=%d\n",
		d.Last.RunID, d.Last.Passed, d.Last.Failed, d.Last.Skipped)
	return err
}

// MonitorHandler обрабатывает команду monitor.
type MonitorHandler struct{}

func (h *MonitorHandler) Name() string { return constants.ActMonitor }

func (h *MonitorHandler) Description() string {
	return "Прогоны по расписанию с /metrics и /healthz"
}

// Execute работает до отмены контекста (SIGINT, SIGTERM) или до
// MonitorConfig.MaxIterations прогонов.
func (h *MonitorHandler) Execute(ctx context.Context, cfg *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActMonitor)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(exec.Out, constants.ActMonitor)
	}

	app, cleanup, err := shared.ResolveApp(ctx, cfg)
	defer cleanup()
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrConfigLoad), "не удалось подготовить монитор", err)
	}
	cfg = app.Config

	built, err := suites.Build(cfg.RunConfig.Suites, app.SuiteOptions)
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrSuiteUnknown), err.Error(), nil)
	}

	log := app.Logger.With(slog.String("trace_id", exec.TraceID), slog.String("command", constants.ActMonitor))
	collector := scrapeCollector(app, log)
	runner := scenario.NewRunner(scenario.RunnerOptions{
		BaseURL:  cfg.TargetConfig.BaseURL,
		FailFast: cfg.RunConfig.FailFast,
		Logger:   log,
		Metrics:  collector,
		Progress: progress.NewNoOp(),
	})

	m, err := monitor.New(monitor.Options{
		Interval: cfg.MonitorConfig.Interval,
		Listen:   cfg.MonitorConfig.Listen,
		Run: func(ctx context.Context) (*scenario.Report, error) {
			return runner.Run(ctx, built...)
		},
		History:       app.History,
		Alerter:       app.Alerter,
		Metrics:       collector,
		Logger:        log,
		Command:       constants.ActMonitor,
		TraceID:       exec.TraceID,
		MaxIterations: cfg.MonitorConfig.MaxIterations,
	})
	if err != nil {
		return exec.WriteError(apperrors.ErrCommandExec, "не удалось создать монитор", err)
	}

	if err := m.Run(ctx); err != nil {
		return exec.WriteError(apperrors.ErrCommandExec, "монитор остановлен с ошибкой", err)
	}

	data := &Data{}
	if last, ok := m.Last(); ok {
		data.Iterations = last.Iteration
		data.Last = &last
	}
	if !exec.JSON() {
		return data.WriteText(exec.Out)
	}
	return exec.Write(&output.Result{
		Status: output.StatusSuccess,
		Data:   data,
	})
}

// scrapeCollector возвращает коллектор с собственным registry для /metrics.
// Коллектор App используется, если он уже Prometheus; иначе создаётся
// коллектор без Pushgateway.
func scrapeCollector(app *di.App, log logging.Logger) metrics.Collector {
	if _, nop := app.MetricsCollector.(*metrics.NopCollector); !nop {
		return app.MetricsCollector
	}
	cfg := di.MetricsConfig(app.Config)
	cfg.PushgatewayURL = ""
	collector, err := metrics.NewPrometheusCollector(cfg, app.Logger)
	if err != nil {
		log.Warn("не удалось создать коллектор метрик, /metrics недоступен", slog.String("error", err.Error()))
		return app.MetricsCollector
	}
	return collector
}
