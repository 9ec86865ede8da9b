// Package monitor выполняет наборы сценариев по расписанию.
//
// Каждая итерация сохраняется в историю, проваленная итерация отправляет
// алерт RUN.FAILED. HTTP сервер отдаёт /metrics и /healthz с итогом
// последнего прогона.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/history"
	"github.com/Kargones/loopcheck/internal/pkg/alerting"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/scenario"
)

// shutdownTimeout — время на завершение HTTP сервера после отмены контекста.
const shutdownTimeout = 10 * time.Second

// RunFunc выполняет один прогон наборов.
type RunFunc func(ctx context.Context) (*scenario.Report, error)

// Options — параметры монитора.
type Options struct {
	Interval time.Duration
	// Listen — адрес HTTP сервера; пусто отключает сервер.
	Listen string
	Run    RunFunc

	History history.Store
	Alerter alerting.Alerter
	Metrics metrics.Collector
	Logger  logging.Logger

	// Command и TraceID попадают в алерты.
	Command string
	TraceID string
	// MaxIterations ограничивает число итераций; 0 — до отмены контекста.
	MaxIterations int
	Now           func() time.Time
}

// Status — итог последней итерации для /healthz.
type Status struct {
	Iteration   int       `json:"iteration"`
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	OK          bool      `json:"ok"`
	Aborted     bool      `json:"aborted,omitempty"`
	AbortReason string    `json:"abort_reason,omitempty"`
	Failures    []string  `json:"failures,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Monitor — непрерывный режим проверок.
type Monitor struct {
	opts Options

	mu   sync.RWMutex
	last *Status
	n    int
}

// New проверяет параметры и создаёт Monitor.
func New(opts Options) (*Monitor, error) {
	if opts.Run == nil {
		return nil, errors.New("monitor: не задана функция прогона")
	}
	if opts.Interval <= 0 {
		opts.Interval = constants.DefaultMonitorInterval
	}
	if opts.History == nil {
		opts.History = history.NopStore{}
	}
	if opts.Alerter == nil {
		opts.Alerter = alerting.NewNopAlerter()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNopCollector()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Command == "" {
		opts.Command = constants.ActMonitor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Monitor{opts: opts}, nil
}

// Run запускает HTTP сервер и выполняет итерации до отмены контекста
// или исчерпания MaxIterations. Отмена контекста не считается ошибкой.
func (m *Monitor) Run(ctx context.Context) error {
	log := m.opts.Logger

	var srv *http.Server
	errCh := make(chan error, 1)
	if m.opts.Listen != "" {
		srv = &http.Server{
			Addr:              m.opts.Listen,
			Handler:           m.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("HTTP сервер монитора запущен", "listen", m.opts.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Ошибка остановки HTTP сервера монитора", "error", err.Error())
			}
		}()
	}

	log.Info("Монитор запущен", "interval", m.opts.Interval.String())
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := m.Iterate(ctx); err != nil && ctx.Err() == nil {
			log.Error("Итерация монитора завершилась ошибкой", "error", err.Error())
		}
		if m.opts.MaxIterations > 0 && m.iterations() >= m.opts.MaxIterations {
			log.Info("Монитор остановлен: достигнут лимит итераций", "iterations", m.iterations())
			return nil
		}

		select {
		case <-ctx.Done():
			log.Info("Монитор остановлен", "iterations", m.iterations())
			return nil
		case err := <-errCh:
			return fmt.Errorf("HTTP сервер монитора: %w", err)
		case <-ticker.C:
		}
	}
}

// Iterate выполняет один прогон, сохраняет его в историю и при падении
// отправляет алерт. Ошибки истории и алертинга только логируются.
func (m *Monitor) Iterate(ctx context.Context) (*scenario.Report, error) {
	log := m.opts.Logger
	start := m.opts.Now()
	m.opts.Metrics.RecordCommandStart(m.opts.Command)

	report, runErr := m.opts.Run(ctx)
	m.opts.Metrics.RecordCommandEnd(m.opts.Command, m.opts.Now().Sub(start), runErr == nil && report != nil && report.OK())

	status := Status{StartedAt: start}
	if runErr != nil {
		status.Error = runErr.Error()
	}
	if report != nil {
		status = statusOf(report, status)
		if err := m.opts.History.Save(ctx, report); err != nil {
			log.Warn("Не удалось сохранить прогон в историю", "run_id", report.RunID, "error", err.Error())
		}
	}
	m.record(&status)

	if report != nil && !report.OK() && ctx.Err() == nil {
		alert := AlertFor(report, m.opts.Command, m.opts.TraceID)
		if err := m.opts.Alerter.Send(ctx, alert); err != nil {
			log.Warn("Не удалось отправить алерт", "error", err.Error())
		}
	}
	if err := m.opts.Metrics.Push(ctx); err != nil {
		log.Warn("Не удалось отправить метрики", "error", err.Error())
	}

	log.Info("Итерация монитора завершена",
		"iteration", status.Iteration,
		"ok", status.OK,
		"failed", status.Failed,
	)
	return report, runErr
}

// Last возвращает итог последней итерации.
func (m *Monitor) Last() (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return Status{}, false
	}
	return *m.last, true
}

func (m *Monitor) record(s *Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	s.Iteration = m.n
	m.last = s
}

func (m *Monitor) iterations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.n
}

func statusOf(report *scenario.Report, s Status) Status {
	s.RunID = report.RunID
	s.StartedAt = report.StartedAt
	s.DurationMs = report.Duration.Milliseconds()
	s.Passed = report.Passed()
	s.Failed = report.Failed()
	s.Skipped = report.Skipped()
	s.OK = report.OK() && s.Error == ""
	s.Aborted = report.Aborted
	s.AbortReason = report.AbortReason
	for _, f := range report.Failures() {
		s.Failures = append(s.Failures, f.FullName()+": "+f.Message)
	}
	return s
}

// AlertFor собирает алерт RUN.FAILED по проваленному прогону.
func AlertFor(report *scenario.Report, command, traceID string) alerting.Alert {
	failures := make([]string, 0, report.Failed())
	for _, f := range report.Failures() {
		failures = append(failures, f.FullName()+": "+f.Message)
	}
	severity := alerting.SeverityWarning
	if report.Aborted {
		severity = alerting.SeverityCritical
	}
	msg := fmt.Sprintf("Упало шагов: %d из %d", report.Failed(), report.Total())
	if report.AbortReason != "" {
		msg += ", " + report.AbortReason
	}
	return alerting.Alert{
		ErrorCode: apperrors.ErrRunFailed,
		Message:   msg,
		TraceID:   traceID,
		RunID:     report.RunID,
		Timestamp: report.StartedAt.Add(report.Duration),
		Command:   command,
		BaseURL:   report.BaseURL,
		Failures:  failures,
		Severity:  severity,
	}
}
