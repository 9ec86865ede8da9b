// Package historyhandler реализует команду history: последние прогоны
// из хранилища истории.
package historyhandler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/history"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
)

func RegisterCmd() error {
	return command.Register(&HistoryHandler{})
}

// Data — результат команды history.
type Data struct {
	Runs []history.RunRecord `json:"runs"`
}

// WriteText печатает таблицу прогонов.
func (d *Data) WriteText(w io.Writer) error {
	if len(d.Runs) == 0 {
		_, err := fmt.Fprintln(w, "История пуста")
		return err
	}
	for _, r := range d.Runs {
		mark := "✅"
		if !r.OK() {
			mark = "❌"
		}
		line := fmt.Sprintf("%s %s  %s  pass=%d fail=%d skip=%d  %s",
			mark, r.StartedAt.Local().Format(time.DateTime), r.RunID,
			r.Passed, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
		if r.Aborted && r.AbortReason != "" {
			line += "  прерван: " + r.AbortReason
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// HistoryHandler обрабатывает команду history.
type HistoryHandler struct{}

func (h *HistoryHandler) Name() string { return constants.ActHistory }

func (h *HistoryHandler) Description() string {
	return "Последние прогоны из хранилища истории (MSSQL)"
}

// Execute читает cfg.HistoryConfig.RecentLimit последних прогонов.
func (h *HistoryHandler) Execute(ctx context.Context, cfg *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActHistory)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(exec.Out, constants.ActHistory)
	}

	app, cleanup, err := shared.ResolveApp(ctx, cfg)
	defer cleanup()
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrConfigLoad), "не удалось подготовить команду", err)
	}
	if openErr := history.Unavailable(app.History); openErr != nil {
		app.Logger.Error("хранилище истории недоступно",
			slog.String("trace_id", exec.TraceID),
			slog.String("server", app.Config.HistoryConfig.Server),
			slog.String("error", openErr.Error()),
		)
		return exec.WriteError(apperrors.CodeOf(openErr, history.ErrHistoryConnect),
			fmt.Sprintf("хранилище истории %s недоступно", app.Config.HistoryConfig.Server), openErr)
	}
	if !history.Enabled(app.History) {
		return exec.WriteError(apperrors.ErrHistoryDisabled,
			"история прогонов не настроена (BR_HISTORY_ENABLED, BR_HISTORY_SERVER)", nil)
	}

	limit := app.Config.HistoryConfig.RecentLimit
	runs, err := app.History.Recent(ctx, limit)
	if err != nil {
		app.Logger.Error("ошибка чтения истории",
			slog.String("trace_id", exec.TraceID),
			slog.String("error", err.Error()),
		)
		return exec.WriteError(apperrors.ErrCommandExec, "не удалось прочитать историю", err)
	}
	if runs == nil {
		runs = []history.RunRecord{}
	}

	data := &Data{Runs: runs}
	if !exec.JSON() {
		return data.WriteText(exec.Out)
	}
	return exec.Write(&output.Result{
		Status: output.StatusSuccess,
		Data:   data,
	})
}
