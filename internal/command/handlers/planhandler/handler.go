// Package planhandler реализует команду plan: печать плана прогона
// без обращения к стенду.
package planhandler

import (
	"context"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/dryrun"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/suites"
)

func RegisterCmd() error {
	return command.Register(&PlanHandler{})
}

// PlanHandler обрабатывает команду plan.
type PlanHandler struct{}

func (h *PlanHandler) Name() string { return constants.ActPlan }

func (h *PlanHandler) Description() string {
	return "План прогона: наборы и шаги в порядке выполнения"
}

// Execute печатает план выбранных наборов с зависимостями. Клиент стенда
// не создаётся, поэтому команда работает и при недоступном стенде.
func (h *PlanHandler) Execute(ctx context.Context, cfg *config.Config) error {
	exec := shared.NewExec(ctx, constants.ActPlan)

	var names []string
	if cfg != nil && cfg.RunConfig != nil {
		names = cfg.RunConfig.Suites
	}
	built, err := suites.Build(names, suites.Options{})
	if err != nil {
		return exec.WriteError(apperrors.CodeOf(err, apperrors.ErrSuiteUnknown), err.Error(), nil)
	}

	return output.WritePlan(exec.Out, output.PlanResult{
		Format:     exec.Format,
		Command:    constants.ActPlan,
		TraceID:    exec.TraceID,
		APIVersion: constants.APIVersion,
		Start:      exec.Start,
		Plan:       dryrun.BuildPlan(constants.ActPlan, scenario.Plan(built...), scenario.PlanSummary(built...)),
		PlanOnly:   true,
	})
}
