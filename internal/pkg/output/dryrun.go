package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DryRunPlan — план шагов, которые были бы выполнены без dry-run.
type DryRunPlan struct {
	Command          string     `json:"command"`
	Steps            []PlanStep `json:"steps"`
	Summary          string     `json:"summary,omitempty"`
	ValidationPassed bool       `json:"validation_passed"`
}

// PlanStep — один шаг плана.
type PlanStep struct {
	Order      int            `json:"order"`
	Suite      string         `json:"suite,omitempty"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters,omitempty"`
	// Requires — ключи состояния, которые шаг ожидает от предыдущих шагов.
	Requires   []string `json:"requires,omitempty"`
	Skipped    bool     `json:"skipped,omitempty"`
	SkipReason string   `json:"skip_reason,omitempty"`
}

// WriteText печатает план с заголовком dry-run.
func (p *DryRunPlan) WriteText(w io.Writer) error {
	return p.write(w, "=== DRY RUN ===", "=== END DRY RUN ===")
}

// WritePlanText печатает план с заголовком plan-only.
func (p *DryRunPlan) WritePlanText(w io.Writer) error {
	return p.write(w, "=== OPERATION PLAN ===", "=== END OPERATION PLAN ===")
}

func (p *DryRunPlan) write(w io.Writer, header, footer string) error {
	ew := &errWriter{w: w}

	ew.printf("\n%s\nКоманда: %s\nВалидация: %s\n\nПлан выполнения:\n",
		header, p.Command, boolToStatus(p.ValidationPassed))

	for _, step := range p.Steps {
		name := step.Operation
		if step.Suite != "" {
			name = step.Suite + "/" + step.Operation
		}
		if step.Skipped {
			ew.printf("  %d. [SKIP] %s (%s)\n", step.Order, name, step.SkipReason)
			continue
		}
		ew.printf("  %d. %s\n", step.Order, name)

		keys := make([]string, 0, len(step.Parameters))
		for k := range step.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ew.printf("      %s: %s\n", k, sanitizeValue(step.Parameters[k]))
		}
		if len(step.Requires) > 0 {
			ew.printf("      требует: %s\n", strings.Join(step.Requires, ", "))
		}
	}

	if p.Summary != "" {
		ew.printf("\nИтого: %s\n", p.Summary)
	}
	ew.printf("%s\n", footer)
	return ew.err
}

func boolToStatus(b bool) string {
	if b {
		return "✅ Пройдена"
	}
	return "❌ Не пройдена"
}

// sanitizeValue убирает ANSI escape-последовательности и управляющие символы,
// переводы строк и табы заменяются пробелами.
func sanitizeValue(v any) string {
	s := fmt.Sprintf("%v", v)
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case r < 32 || r == 127:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
