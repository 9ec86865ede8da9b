package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// Status — итог шага.
type Status string

// Возможные статусы шага. Значения совпадают со статусами progress и метрик.
const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Outcome — результат, который возвращает шаг.
type Outcome struct {
	Status  Status
	Message string
	// Details — подробности для отчёта: тело ответа, ошибка схемы и т.п.
	Details string
}

// Pass возвращает успешный результат.
func Pass(format string, args ...any) Outcome {
	return Outcome{Status: StatusPass, Message: sprintf(format, args...)}
}

// Fail возвращает падение шага.
func Fail(format string, args ...any) Outcome {
	return Outcome{Status: StatusFail, Message: sprintf(format, args...)}
}

// Skip возвращает пропуск шага.
func Skip(format string, args ...any) Outcome {
	return Outcome{Status: StatusSkip, Message: sprintf(format, args...)}
}

// WithDetails возвращает копию результата с подробностями.
func (o Outcome) WithDetails(details string) Outcome {
	o.Details = details
	return o
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Env — окружение, доступное шагу во время выполнения.
type Env struct {
	State  *State
	Logger logging.Logger
	// Now — источник времени; в тестах подменяется.
	Now func() time.Time
}

// StepFunc выполняет один шаг.
type StepFunc func(ctx context.Context, env *Env) Outcome

// Step — одна проверка внутри набора.
type Step struct {
	Name        string
	Description string
	// Requires — ключи State, без которых шаг не имеет смысла.
	Requires []string
	Run      StepFunc
}

// Suite — именованный набор шагов.
type Suite struct {
	Name        string
	Description string
	// Critical — падение набора прерывает оставшиеся наборы прогона.
	Critical bool
	Steps    []Step
}

// StepResult — запись отчёта об одном шаге.
type StepResult struct {
	Suite     string        `json:"suite"`
	Step      string        `json:"step"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Details   string        `json:"details,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// FullName возвращает имя шага в виде suite/step.
func (r StepResult) FullName() string {
	return r.Suite + "/" + r.Step
}
