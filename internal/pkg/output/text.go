package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const summaryDivider = "══════════════════════════════════════════════════════"

// TextRenderer реализуется данными команды, у которых есть собственное
// текстовое представление (например, отчёт о прогоне).
type TextRenderer interface {
	WriteText(w io.Writer) error
}

// TextWriter печатает Result в человекочитаемом виде.
type TextWriter struct{}

// NewTextWriter создаёт TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write печатает заголовок, ошибку, данные и блок сводки.
// Для Status="error" сводка не печатается.
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}
	ew := &errWriter{w: w}

	ew.printf("%s: %s\n", result.Command, result.Status)
	if result.Error != nil {
		ew.printf("Error [%s]: %s\n", result.Error.Code, result.Error.Message)
	}
	if ew.err != nil {
		return ew.err
	}

	switch data := result.Data.(type) {
	case nil:
	case TextRenderer:
		if err := data.WriteText(w); err != nil {
			return err
		}
	default:
		raw, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать Data: %w", err)
		}
		ew.printf("Data: %s\n", raw)
	}

	if result.Status != StatusError {
		writeSummary(ew, result)
	}
	return ew.err
}

func writeSummary(ew *errWriter, result *Result) {
	ew.printf("\n%s\n📊 Сводка\n%s\n", summaryDivider, summaryDivider)

	if result.Metadata != nil && result.Metadata.DurationMs > 0 {
		ew.printf("⏱️  Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs))
	}

	if s := result.Summary; s != nil {
		for _, m := range s.KeyMetrics {
			if m.Unit != "" {
				ew.printf("📈 %s: %s %s\n", m.Name, m.Value, m.Unit)
			} else {
				ew.printf("📈 %s: %s\n", m.Name, m.Value)
			}
		}
		if s.WarningsCount > 0 {
			ew.printf("\n⚠️  Предупреждений: %d\n", s.WarningsCount)
			for _, warn := range s.Warnings {
				ew.printf("   • %s\n", warn)
			}
		}
	}

	ew.printf("%s\n", summaryDivider)
}

// formatDuration форматирует миллисекунды: 250мс, 1.5с, 2м 5с.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%.1fс", float64(ms)/1000)
	}
	return fmt.Sprintf("%dм %dс", sec/60, sec%60)
}

// errWriter запоминает первую ошибку записи, последующие вызовы игнорируются.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
