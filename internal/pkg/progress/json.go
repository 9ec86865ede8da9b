package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONProgress пишет события в формате JSON-lines.
type JSONProgress struct {
	encoder   *json.Encoder
	total     int
	startTime time.Time
}

// NewJSONProgress создаёт поток JSON событий.
func NewJSONProgress(opts Options) *JSONProgress {
	var encoder *json.Encoder
	if opts.Output != nil {
		encoder = json.NewEncoder(opts.Output)
	}
	return &JSONProgress{encoder: encoder}
}

// Start пишет событие progress_start.
func (p *JSONProgress) Start(total int, message string) {
	p.total = total
	p.startTime = time.Now()
	p.emit(Event{Type: "progress_start", Total: total, Message: message})
}

// Step пишет событие step с процентом выполнения.
func (p *JSONProgress) Step(step StepEvent) {
	event := Event{
		Type:       "step",
		Index:      step.Index,
		Total:      p.total,
		Suite:      step.Suite,
		Step:       step.Step,
		Status:     step.Status,
		Message:    step.Message,
		DurationMs: step.Duration.Milliseconds(),
	}
	if p.total > 0 {
		percent := min(step.Index*100/p.total, 100)
		event.Percent = &percent
	}
	p.emit(event)
}

// Finish пишет событие progress_end.
func (p *JSONProgress) Finish() {
	p.emit(Event{Type: "progress_end", DurationMs: time.Since(p.startTime).Milliseconds()})
}

func (p *JSONProgress) emit(event Event) {
	if p.encoder == nil {
		return
	}
	if err := p.encoder.Encode(event); err != nil {
		fmt.Fprintf(os.Stderr, "progress: encode error: %v\n", err) //nolint:errcheck // writing to stderr
	}
}
