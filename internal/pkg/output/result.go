// Package output форматирует результаты команд в JSON и текст.
package output

// Возможные значения Result.Status.
const (
	// StatusSuccess — команда выполнена, все проверки прошли.
	StatusSuccess = "success"
	// StatusFailed — команда выполнена, но часть проверок не прошла.
	StatusFailed = "failed"
	// StatusError — команда не смогла выполниться.
	StatusError = "error"
)

// Result — структурированный результат выполнения команды.
// Сериализуется в JSON при BR_OUTPUT_FORMAT=json, иначе печатается текстом.
type Result struct {
	Status  string `json:"status"`
	Command string `json:"command"`

	// Data — полезная нагрузка конкретной команды.
	Data any `json:"data,omitempty"`

	// Error заполняется только при Status="error".
	Error *ErrorInfo `json:"error,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`

	DryRun   bool        `json:"dry_run,omitempty"`
	PlanOnly bool        `json:"plan_only,omitempty"`
	Plan     *DryRunPlan `json:"plan,omitempty"`

	// Summary в JSON попадает через Metadata.Summary (см. JSONWriter).
	Summary *SummaryInfo `json:"-"`
}

// ErrorInfo описывает ошибку. Message не должен содержать секретов.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata содержит метаданные выполнения команды.
type Metadata struct {
	DurationMs int64        `json:"duration_ms"`
	TraceID    string       `json:"trace_id,omitempty"`
	RunID      string       `json:"run_id,omitempty"`
	APIVersion string       `json:"api_version"`
	Summary    *SummaryInfo `json:"summary,omitempty"`
}
