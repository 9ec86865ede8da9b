package alerting

import "github.com/Kargones/loopcheck/internal/pkg/logging"

// NewAlerter собирает MultiChannelAlerter из включённых каналов.
// При выключенном алертинге или без каналов возвращается NopAlerter.
func NewAlerter(config Config, rules RulesConfig, logger logging.Logger) (Alerter, error) {
	if !config.Enabled {
		return NewNopAlerter(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	channels := make(map[string]Alerter)
	if config.Telegram.Enabled {
		channels[ChannelTelegram] = NewTelegramAlerter(config.Telegram, logger)
	}
	if config.Webhook.Enabled {
		channels[ChannelWebhook] = NewWebhookAlerter(config.Webhook, logger)
	}
	if len(channels) == 0 {
		logger.Warn("alerting включён, но нет настроенных каналов, используется NopAlerter")
		return NewNopAlerter(), nil
	}

	window := config.RateLimitWindow
	if window == 0 {
		window = DefaultRateLimitWindow
	}
	return NewMultiChannelAlerter(channels, NewRulesEngine(rules), NewRateLimiter(window), logger), nil
}
