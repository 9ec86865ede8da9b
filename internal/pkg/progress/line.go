package progress

import (
	"fmt"
	"time"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiGray  = "\033[90m"
)

// LineProgress печатает строку на каждый шаг:
//
//	✅ PASS [ 3/41] auth/me (212ms) user u-42
type LineProgress struct {
	opts      Options
	total     int
	startTime time.Time
	counts    map[string]int
}

// NewLineProgress создаёт построчный вывод.
func NewLineProgress(opts Options) *LineProgress {
	return &LineProgress{opts: opts, counts: make(map[string]int)}
}

// Start печатает заголовок прогона.
func (p *LineProgress) Start(total int, message string) {
	p.total = total
	p.startTime = time.Now()
	p.counts = make(map[string]int)
	if message != "" {
		p.printf("▶ %s (%d шагов)\n", message, total)
	}
}

// Step печатает строку шага.
func (p *LineProgress) Step(step StepEvent) {
	p.counts[step.Status]++

	label, color := statusLabel(step.Status)
	if p.opts.Color {
		label = color + label + ansiReset
	}
	width := len(fmt.Sprint(p.total))
	line := fmt.Sprintf("%s [%*d/%d] %s/%s (%s)",
		label, width, step.Index, p.total, step.Suite, step.Step, FormatDuration(step.Duration))
	if step.Message != "" {
		line += " " + step.Message
	}
	p.printf("%s\n", line)
}

// Finish печатает итоговую строку.
func (p *LineProgress) Finish() {
	p.printf("■ pass=%d fail=%d skip=%d за %s\n",
		p.counts[StatusPass], p.counts[StatusFail], p.counts[StatusSkip],
		FormatDuration(time.Since(p.startTime)))
}

func (p *LineProgress) printf(format string, args ...any) {
	if p.opts.Output == nil {
		return
	}
	_, _ = fmt.Fprintf(p.opts.Output, format, args...) //nolint:errcheck // вывод прогресса best-effort
}

func statusLabel(status string) (label, color string) {
	switch status {
	case StatusPass:
		return "✅ PASS", ansiGreen
	case StatusFail:
		return "❌ FAIL", ansiRed
	default:
		return "⏭️ SKIP", ansiGray
	}
}
