package scenario

import (
	"fmt"
	"io"
	"time"

	"github.com/Kargones/loopcheck/internal/pkg/output"
)

// Report — итог одного прогона.
type Report struct {
	RunID     string        `json:"run_id"`
	BaseURL   string        `json:"base_url"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Results   []StepResult  `json:"results"`
	// Aborted — прогон остановлен раньше времени (fail-fast, критичный
	// набор или отмена контекста).
	Aborted     bool   `json:"aborted,omitempty"`
	AbortReason string `json:"abort_reason,omitempty"`
}

func (r *Report) count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Passed возвращает число успешных шагов.
func (r *Report) Passed() int { return r.count(StatusPass) }

// Failed возвращает число упавших шагов.
func (r *Report) Failed() int { return r.count(StatusFail) }

// Skipped возвращает число пропущенных шагов.
func (r *Report) Skipped() int { return r.count(StatusSkip) }

// Total возвращает число записей отчёта.
func (r *Report) Total() int { return len(r.Results) }

// SuccessRate — доля успешных среди выполненных шагов; пропуски не учитываются.
// Если ничего не выполнено, возвращает 0.
func (r *Report) SuccessRate() float64 {
	executed := r.Passed() + r.Failed()
	if executed == 0 {
		return 0
	}
	return float64(r.Passed()) / float64(executed)
}

// OK сообщает, что в прогоне нет падений.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Failures возвращает упавшие шаги в порядке выполнения.
func (r *Report) Failures() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if res.Status == StatusFail {
			out = append(out, res)
		}
	}
	return out
}

// SuiteStats — счётчики одного набора.
type SuiteStats struct {
	Suite   string `json:"suite"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

// BySuite группирует результаты по наборам в порядке их первого появления.
func (r *Report) BySuite() []SuiteStats {
	index := make(map[string]int)
	var out []SuiteStats
	for _, res := range r.Results {
		i, ok := index[res.Suite]
		if !ok {
			i = len(out)
			index[res.Suite] = i
			out = append(out, SuiteStats{Suite: res.Suite})
		}
		switch res.Status {
		case StatusPass:
			out[i].Passed++
		case StatusFail:
			out[i].Failed++
		case StatusSkip:
			out[i].Skipped++
		}
	}
	return out
}

// Summary собирает сводку для вывода результата команды.
func (r *Report) Summary() *output.SummaryInfo {
	s := output.NewSummaryInfo()
	s.AddCount("Всего", r.Total(), "шагов")
	s.AddCount("Пройдено", r.Passed(), "шагов")
	s.AddCount("Упало", r.Failed(), "шагов")
	s.AddCount("Пропущено", r.Skipped(), "шагов")
	s.AddPercent("Успешность", r.SuccessRate())
	for _, f := range r.Failures() {
		s.AddWarning(f.FullName() + ": " + f.Message)
	}
	if r.Aborted && r.AbortReason != "" {
		s.AddWarning("прогон прерван: " + r.AbortReason)
	}
	return s
}

var statusMarks = map[Status]string{
	StatusPass: "✅",
	StatusFail: "❌",
	StatusSkip: "⏭️ ",
}

// WriteText печатает отчёт по наборам: строка на шаг, сообщение для упавших
// и пропущенных шагов.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Стенд: %s\nRun ID: %s\n", r.BaseURL, r.RunID); err != nil {
		return err
	}
	suite := ""
	for _, res := range r.Results {
		if res.Suite != suite {
			suite = res.Suite
			if _, err := fmt.Fprintf(w, "\n[%s]\n", suite); err != nil {
				return err
			}
		}
		line := fmt.Sprintf("  %s %-28s %6dмс", statusMarks[res.Status], res.Step, res.Duration.Milliseconds())
		if res.Status != StatusPass && res.Message != "" {
			line += "  " + res.Message
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if r.Aborted {
		if _, err := fmt.Fprintf(w, "\nПрогон прерван: %s\n", r.AbortReason); err != nil {
			return err
		}
	}
	return nil
}
