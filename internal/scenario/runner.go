package scenario

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/pkg/progress"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

// RunnerOptions конфигурирует Runner. Пустые поля заменяются no-op реализациями.
type RunnerOptions struct {
	BaseURL  string
	FailFast bool
	Logger   logging.Logger
	Metrics  metrics.Collector
	Progress progress.Progress
	// State — начальное состояние; nil создаёт пустое.
	State *State
	Now   func() time.Time
}

// Runner выполняет наборы шагов последовательно.
type Runner struct {
	opts RunnerOptions
}

// NewRunner создаёт Runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNopCollector()
	}
	if opts.Progress == nil {
		opts.Progress = progress.NewNoOp()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run выполняет наборы по порядку и возвращает отчёт.
// При отмене контекста возвращается частичный отчёт и ctx.Err().
func (r *Runner) Run(ctx context.Context, suites ...Suite) (*Report, error) {
	state := r.opts.State
	if state == nil {
		state = NewState()
	}
	env := &Env{State: state, Logger: r.opts.Logger, Now: r.opts.Now}

	report := &Report{
		RunID:     uuid.NewString(),
		BaseURL:   r.opts.BaseURL,
		StartedAt: r.opts.Now(),
	}
	log := r.opts.Logger.With("run_id", report.RunID)
	if traceID := tracing.TraceIDFromContext(ctx); traceID != "" {
		log = log.With(logging.KeyTraceID, traceID)
	}

	total := 0
	for _, s := range suites {
		total += len(s.Steps)
	}
	r.opts.Progress.Start(total, "Прогон "+suiteNames(suites))
	defer r.opts.Progress.Finish()

	log.Info("Прогон начат", "suites", suiteNames(suites), "steps", total)

	var runErr error
	index := 0
suiteLoop:
	for _, suite := range suites {
		suiteFailed := false
		for _, step := range suite.Steps {
			if err := ctx.Err(); err != nil {
				runErr = err
				report.Aborted = true
				report.AbortReason = "контекст отменён"
				break suiteLoop
			}
			index++
			res := r.runStep(ctx, env, log, suite.Name, step)
			report.Results = append(report.Results, res)
			r.opts.Progress.Step(progress.StepEvent{
				Index:    index,
				Suite:    res.Suite,
				Step:     res.Step,
				Status:   string(res.Status),
				Message:  res.Message,
				Duration: res.Duration,
			})

			if res.Status != StatusFail {
				continue
			}
			suiteFailed = true
			if r.opts.FailFast {
				report.Aborted = true
				report.AbortReason = "fail-fast: " + res.FullName()
				break suiteLoop
			}
		}
		if suiteFailed && suite.Critical {
			report.Aborted = true
			report.AbortReason = "упал критичный набор " + suite.Name
			log.Warn("Критичный набор упал, оставшиеся наборы не выполняются", logging.KeySuite, suite.Name)
			break
		}
	}

	report.Duration = r.opts.Now().Sub(report.StartedAt)
	r.opts.Metrics.RecordRun(metrics.RunStats{
		Passed:   report.Passed(),
		Failed:   report.Failed(),
		Skipped:  report.Skipped(),
		Duration: report.Duration,
		Finished: r.opts.Now(),
	})

	log.Info("Прогон завершён",
		"passed", report.Passed(),
		"failed", report.Failed(),
		"skipped", report.Skipped(),
		logging.KeyDuration, report.Duration.Milliseconds(),
		"aborted", report.Aborted,
	)
	return report, runErr
}

// runStep выполняет один шаг: проверка Requires, span, recover, метрики, лог.
func (r *Runner) runStep(ctx context.Context, env *Env, log logging.Logger, suite string, step Step) StepResult {
	started := r.opts.Now()
	stepCtx, span := tracing.StartStep(ctx, suite, step.Name)

	var out Outcome
	if missing := env.State.Missing(step.Requires); len(missing) > 0 {
		out = Skip("нет значения %s", strings.Join(missing, ", "))
	} else {
		out = r.invoke(stepCtx, env, step)
	}
	if out.Status == "" {
		out.Status = StatusPass
	}

	duration := r.opts.Now().Sub(started)
	tracing.EndStep(span, string(out.Status), out.Message)
	r.opts.Metrics.RecordStep(suite, step.Name, string(out.Status), duration)

	stepLog := logging.ForStep(log, suite, step.Name)
	args := []any{logging.KeyStatus, string(out.Status), logging.KeyDuration, duration.Milliseconds()}
	if out.Message != "" {
		args = append(args, "message", out.Message)
	}
	switch out.Status {
	case StatusFail:
		if out.Details != "" {
			args = append(args, "details", out.Details)
		}
		stepLog.Warn("Шаг упал", args...)
	case StatusSkip:
		stepLog.Info("Шаг пропущен", args...)
	default:
		stepLog.Info("Шаг выполнен", args...)
	}

	return StepResult{
		Suite:     suite,
		Step:      step.Name,
		Status:    out.Status,
		Message:   out.Message,
		Details:   out.Details,
		StartedAt: started,
		Duration:  duration,
	}
}

// invoke вызывает шаг и превращает панику в падение.
func (r *Runner) invoke(ctx context.Context, env *Env, step Step) (out Outcome) {
	if step.Run == nil {
		return Skip("шаг не реализован")
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = Fail("паника: %v", rec).WithDetails(string(debug.Stack()))
		}
	}()
	return step.Run(ctx, env)
}

func suiteNames(suites []Suite) string {
	names := make([]string, 0, len(suites))
	for _, s := range suites {
		names = append(names, s.Name)
	}
	return strings.Join(names, ",")
}

// String возвращает краткое описание отчёта.
func (r *Report) String() string {
	return fmt.Sprintf("run %s: pass=%d fail=%d skip=%d за %s",
		r.RunID, r.Passed(), r.Failed(), r.Skipped(), r.Duration.Round(time.Millisecond))
}
