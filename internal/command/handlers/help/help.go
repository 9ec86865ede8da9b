// Package help реализует команду help: список команд, наборов и переменных окружения.
package help

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/suites"
)

func RegisterCmd() error {
	return command.Register(&Handler{})
}

// Data содержит информацию обо всех доступных командах.
type Data struct {
	Commands []CommandInfo `json:"commands"`
	// Suites — имена наборов в порядке выполнения.
	Suites []string `json:"suites"`
}

// CommandInfo описывает одну команду.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// envOptions — переменные окружения режимов выполнения.
var envOptions = [][2]string{
	{constants.EnvOutputFormat + "=json", "Машиночитаемый вывод"},
	{constants.EnvDryRun + "=true", "Dry-run: план без обращений к стенду"},
	{constants.EnvPlanOnly + "=true", "Только план операций без выполнения"},
	{constants.EnvVerbose + "=true", "План перед прогоном"},
	{constants.EnvConfigPath + "=path", "Путь к YAML конфигурации"},
}

// Handler обрабатывает команду help.
type Handler struct{}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActHelp
}

// Description возвращает описание команды для вывода в help.
func (h *Handler) Description() string {
	return "Вывод списка доступных команд"
}

// Execute собирает список команд из реестра и выводит результат.
func (h *Handler) Execute(ctx context.Context, _ *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActHelp)
	if !dryrun.IsDryRun() && dryrun.IsPlanOnly() {
		return dryrun.WritePlanOnlyUnsupported(exec.Out, constants.ActHelp)
	}

	helpData := buildData()
	if !exec.JSON() {
		return helpData.writeText(exec.Out)
	}
	return exec.Write(&output.Result{
		Status: output.StatusSuccess,
		Data:   helpData,
	})
}

func buildData() *Data {
	all := command.All()
	data := &Data{Suites: suites.Names()}
	for _, name := range command.Names() {
		handler, ok := all[name]
		if !ok {
			continue
		}
		data.Commands = append(data.Commands, CommandInfo{
			Name:        name,
			Description: handler.Description(),
		})
	}
	return data
}

func (d *Data) writeText(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(constants.AppName + " — проверка работоспособности бэкенда Loopync\n")
	sb.WriteString("\nКоманды:\n")

	maxLen := 0
	for _, cmd := range d.Commands {
		maxLen = max(maxLen, len(cmd.Name))
	}
	for _, cmd := range d.Commands {
		fmt.Fprintf(&sb, "  %-*s  %s\n", maxLen, cmd.Name, cmd.Description)
	}

	sb.WriteString("\nНаборы:\n  " + strings.Join(d.Suites, ", ") + "\n")

	sb.WriteString("\nОпции:\n")
	for _, opt := range envOptions {
		fmt.Fprintf(&sb, "  %-26s%s\n", opt[0], opt[1])
	}

	_, err := fmt.Fprint(w, sb.String())
	return err
}
