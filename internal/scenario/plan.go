package scenario

import (
	"fmt"

	"github.com/Kargones/loopcheck/internal/pkg/output"
)

// Plan строит план прогона без обращения к стенду: все шаги всех наборов
// по порядку с ключами, которые они ожидают от предыдущих шагов.
func Plan(suites ...Suite) []output.PlanStep {
	var steps []output.PlanStep
	order := 0
	for _, suite := range suites {
		for _, step := range suite.Steps {
			order++
			ps := output.PlanStep{
				Order:     order,
				Suite:     suite.Name,
				Operation: step.Name,
				Requires:  append([]string(nil), step.Requires...),
			}
			if step.Description != "" {
				ps.Parameters = map[string]any{"описание": step.Description}
			}
			if suite.Critical {
				if ps.Parameters == nil {
					ps.Parameters = map[string]any{}
				}
				ps.Parameters["критичный"] = true
			}
			steps = append(steps, ps)
		}
	}
	return steps
}

// PlanSummary возвращает строку итога плана.
func PlanSummary(suites ...Suite) string {
	total := 0
	for _, s := range suites {
		total += len(s.Steps)
	}
	return fmt.Sprintf("%d наборов, %d шагов", len(suites), total)
}

// Plan — метод-обёртка над пакетной функцией Plan.
func (r *Runner) Plan(suites ...Suite) []output.PlanStep {
	return Plan(suites...)
}
