// Package version реализует команду version: версия сборки, Go и коммит.
package version

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
)

func RegisterCmd() error {
	return command.Register(&VersionHandler{})
}

// VersionData содержит информацию о версии приложения.
type VersionData struct {
	// Version — версия из -ldflags, "dev" для локальной сборки.
	Version string `json:"version"`

	// GoVersion — версия Go, использованная при сборке.
	GoVersion string `json:"go_version"`

	Commit string `json:"commit"`

	// APIVersion — версия формата JSON вывода.
	APIVersion string `json:"api_version"`
}

func (d *VersionData) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s version %s\n  Go:     %s\n  Commit: %s\n  API:    %s\n",
		constants.AppName, d.Version, d.GoVersion, d.Commit, d.APIVersion)
	return err
}

// buildVersionData подставляет "dev" и "unknown" вместо пустых значений.
func buildVersionData(version, commit string) *VersionData {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	return &VersionData{
		Version:    version,
		GoVersion:  runtime.Version(),
		Commit:     commit,
		APIVersion: constants.APIVersion,
	}
}

// VersionHandler обрабатывает команду version.
type VersionHandler struct{}

// Name возвращает имя команды.
func (h *VersionHandler) Name() string {
	return constants.ActVersion
}

// Description возвращает описание команды для вывода в help.
func (h *VersionHandler) Description() string {
	return "Вывод информации о версии приложения"
}

// Execute выводит версию. Конфигурация не нужна, cfg может быть nil.
func (h *VersionHandler) Execute(ctx context.Context, _ *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActVersion)

	// dry-run имеет приоритет над plan-only.
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(exec.Out, constants.ActVersion)
	}

	versionData := buildVersionData(constants.Version, constants.Commit)

	// Текстовый вывод компактный, без metadata и trace_id.
	if !exec.JSON() {
		return versionData.writeText(exec.Out)
	}

	return exec.Write(&output.Result{
		Status: output.StatusSuccess,
		Data:   versionData,
	})
}
