package output

import (
	"io"
	"time"
)

// PlanResult описывает вывод dry-run или plan-only результата.
type PlanResult struct {
	Format     string
	Command    string
	TraceID    string
	APIVersion string
	Start      time.Time
	Plan       *DryRunPlan
	// PlanOnly выбирает заголовок и флаг plan_only вместо dry_run.
	PlanOnly bool
}

// WritePlan печатает план текстом или JSON-конвертом.
func WritePlan(w io.Writer, pr PlanResult) error {
	if !IsJSON(pr.Format) {
		if pr.PlanOnly {
			return pr.Plan.WritePlanText(w)
		}
		return pr.Plan.WriteText(w)
	}

	result := &Result{
		Status:   StatusSuccess,
		Command:  pr.Command,
		Plan:     pr.Plan,
		DryRun:   !pr.PlanOnly,
		PlanOnly: pr.PlanOnly,
		Metadata: &Metadata{
			DurationMs: time.Since(pr.Start).Milliseconds(),
			TraceID:    pr.TraceID,
			APIVersion: pr.APIVersion,
		},
	}
	return NewJSONWriter().Write(w, result)
}
