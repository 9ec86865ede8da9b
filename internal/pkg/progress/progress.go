// Package progress выводит ход прогона: по строке на каждый выполненный шаг
// или JSON-lines события для автоматизации.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Статусы шага в событиях прогресса.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusSkip = "skip"
)

// Progress получает события прогона. Реализации не потокобезопасны:
// раннер вызывает их последовательно.
type Progress interface {
	// Start вызывается перед первым шагом; total — число шагов в плане.
	Start(total int, message string)
	// Step сообщает о завершении одного шага.
	Step(step StepEvent)
	// Finish вызывается после последнего шага, в том числе при прерывании.
	Finish()
}

// StepEvent описывает завершённый шаг.
type StepEvent struct {
	// Index — порядковый номер шага, начиная с 1.
	Index    int
	Suite    string
	Step     string
	Status   string
	Message  string
	Duration time.Duration
}

// Options конфигурирует вывод прогресса.
type Options struct {
	// Output — куда выводить (по умолчанию os.Stderr).
	Output io.Writer
	// Color включает ANSI-цвета; фабрика включает его только для терминала.
	Color bool
}

// Event — одно JSON событие потока прогресса.
type Event struct {
	Type       string `json:"type"` // "progress_start", "step", "progress_end"
	Index      int    `json:"index,omitempty"`
	Total      int    `json:"total,omitempty"`
	Percent    *int   `json:"percent,omitempty"`
	Suite      string `json:"suite,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// IsTTY проверяет, является ли writer терминалом.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// FormatDuration форматирует длительность шага: 850ms, 4.2s, 1m 5s.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
