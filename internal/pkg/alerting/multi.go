package alerting

import (
	"context"
	"sort"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// MultiChannelAlerter рассылает алерт во все каналы, прошедшие правила.
// Rate limiter общий для всех каналов.
type MultiChannelAlerter struct {
	channels    map[string]Alerter
	names       []string
	rules       *RulesEngine
	rateLimiter *RateLimiter
	logger      logging.Logger
}

// NewMultiChannelAlerter создаёт рассыльщик. Каналы обходятся в алфавитном порядке.
func NewMultiChannelAlerter(channels map[string]Alerter, rules *RulesEngine, rateLimiter *RateLimiter, logger logging.Logger) *MultiChannelAlerter {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	return &MultiChannelAlerter{
		channels:    channels,
		names:       names,
		rules:       rules,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Send отправляет алерт. Всегда возвращает nil.
func (m *MultiChannelAlerter) Send(ctx context.Context, alert Alert) error {
	if m.rateLimiter != nil && !m.rateLimiter.Allow(alert.ErrorCode) {
		m.logger.Debug("алерт подавлен rate limiter", "error_code", alert.ErrorCode)
		return nil
	}

	sent := 0
	for _, name := range m.names {
		if ctx.Err() != nil {
			return nil
		}
		if m.rules != nil && !m.rules.Evaluate(alert, name) {
			m.logger.Debug("алерт отклонён правилами",
				"channel", name,
				"error_code", alert.ErrorCode,
				"severity", alert.Severity.String(),
			)
			continue
		}
		_ = m.channels[name].Send(ctx, alert) //nolint:errcheck // каналы логируют ошибки сами
		sent++
	}

	m.logger.Debug("рассылка алерта завершена",
		"error_code", alert.ErrorCode,
		"channels_sent", sent,
		"channels_total", len(m.names),
	)
	return nil
}
