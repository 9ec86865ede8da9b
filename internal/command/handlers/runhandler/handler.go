// Package runhandler реализует команду run: однократный прогон выбранных
// наборов сценариев против стенда Loopync.
package runhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/monitor"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/suites"
)

func RegisterCmd() error {
	return command.Register(&RunHandler{})
}

// RunHandler обрабатывает команду run.
type RunHandler struct{}

// Name возвращает имя команды.
func (h *RunHandler) Name() string {
	return constants.ActRun
}

// Description возвращает описание команды для вывода в help.
func (h *RunHandler) Description() string {
	return "Однократный прогон наборов сценариев против стенда"
}

// Execute строит наборы, выполняет их и печатает отчёт. Упавшие шаги
// возвращаются ошибкой RUN.FAILED; отчёт при этом уже напечатан.
func (h *RunHandler) Execute(ctx context.Context, cfg *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActRun)

	app, cleanup, err := shared.ResolveApp(ctx, cfg)
	defer cleanup()
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrConfigLoad), "не удалось подготовить прогон", err)
	}
	cfg = app.Config

	built, err := suites.Build(cfg.RunConfig.Suites, app.SuiteOptions)
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrSuiteUnknown), err.Error(), nil)
	}

	// dry-run имеет приоритет над plan-only.
	if dryrun.IsDryRun() || dryrun.IsPlanOnly() {
		return output.WritePlan(exec.Out, output.PlanResult{
			Format:     exec.Format,
			Command:    constants.ActRun,
			TraceID:    exec.TraceID,
			APIVersion: constants.APIVersion,
			Start:      exec.Start,
			Plan:       dryrun.BuildPlan(constants.ActRun, scenario.Plan(built...), scenario.PlanSummary(built...)),
			PlanOnly:   !dryrun.IsDryRun(),
		})
	}
	if dryrun.IsVerbose() && !exec.JSON() {
		plan := dryrun.BuildPlan(constants.ActRun, scenario.Plan(built...), scenario.PlanSummary(built...))
		if err := plan.WritePlanText(os.Stderr); err != nil {
			app.Logger.Warn("не удалось вывести план", slog.String("error", err.Error()))
		}
	}

	log := app.Logger.With(
		slog.String("trace_id", exec.TraceID),
		slog.String("command", constants.ActRun),
	)
	log.Info("Запуск прогона", slog.Int("suites", len(built)))

	report, runErr := app.Runner.Run(ctx, built...)
	if report == nil {
		return exec.WriteError(apperrors.ErrCommandExec, "прогон не выполнен", runErr)
	}
	log = log.With(slog.String("run_id", report.RunID))

	if err := app.History.Save(ctx, report); err != nil {
		log.Warn("не удалось сохранить прогон в историю", slog.String("error", err.Error()))
	}
	if !report.OK() && ctx.Err() == nil {
		if err := app.Alerter.Send(ctx, monitor.AlertFor(report, constants.ActRun, exec.TraceID)); err != nil {
			log.Warn("не удалось отправить алерт", slog.String("error", err.Error()))
		}
	}

	status := output.StatusSuccess
	if !report.OK() {
		status = output.StatusFailed
	}
	meta := exec.Metadata()
	meta.RunID = report.RunID
	result := &output.Result{
		Status:   status,
		Data:     report,
		Metadata: meta,
		Summary:  report.Summary(),
	}
	if err := exec.Write(result); err != nil {
		return err
	}

	log.Info("Прогон завершён",
		slog.Int("passed", report.Passed()),
		slog.Int("failed", report.Failed()),
		slog.Int("skipped", report.Skipped()),
	)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			return apperrors.NewAppError(apperrors.ErrRunCancelled, "прогон прерван", runErr)
		}
		return apperrors.NewAppError(apperrors.ErrCommandExec, "ошибка прогона", runErr)
	}
	if !report.OK() {
		return apperrors.NewAppError(apperrors.ErrRunFailed,
			fmt.Sprintf("упало шагов: %d из %d", report.Failed(), report.Total()), nil)
	}
	return nil
}
