// Package alerting рассылает уведомления о проваленных прогонах.
//
// Каналы: webhook (JSON POST) и Telegram. Перед рассылкой алерт проходит
// общий rate limiter и правила фильтрации каждого канала.
package alerting

import (
	"context"
	"time"
)

// Severity — уровень важности алерта.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// Имена каналов, используются в правилах и логах.
const (
	ChannelTelegram = "telegram"
	ChannelWebhook  = "webhook"
)

// String возвращает имя уровня в верхнем регистре.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert описывает одно уведомление.
type Alert struct {
	// ErrorCode — код ошибки, ключ rate limiter (например RUN.FAILED).
	ErrorCode string
	Message   string
	TraceID   string
	RunID     string
	Timestamp time.Time
	Command   string
	// BaseURL — проверяемый стенд.
	BaseURL string
	// Failures — проваленные шаги в виде "suite/step: сообщение".
	Failures []string
	Severity Severity
}

// Alerter отправляет алерт. Реализации возвращают nil даже при ошибке
// доставки: уведомления не должны ломать прогон, ошибки только логируются.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// maxFailuresInAlert ограничивает список шагов в тексте уведомления.
const maxFailuresInAlert = 10

func truncatedFailures(failures []string) (shown []string, hidden int) {
	if len(failures) <= maxFailuresInAlert {
		return failures, 0
	}
	return failures[:maxFailuresInAlert], len(failures) - maxFailuresInAlert
}
