package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Kargones/loopcheck/internal/pkg/alerting"
)

// AlertingConfig содержит настройки алертинга.
type AlertingConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_ALERTING_ENABLED" env-default:"false"`

	// RateLimitWindow — минимальный интервал между алертами с одним кодом.
	// В режиме monitor проваленные итерации идут подряд, окно гасит повторы.
	RateLimitWindow time.Duration `yaml:"rateLimitWindow" env:"BR_ALERTING_RATE_LIMIT_WINDOW" env-default:"15m"`

	Telegram TelegramChannelConfig `yaml:"telegram"`
	Webhook  WebhookChannelConfig  `yaml:"webhook"`

	// Rules — правила фильтрации.
	// Правила канала ПОЛНОСТЬЮ заменяют глобальные для этого канала.
	Rules alerting.RulesConfig `yaml:"rules"`
}

// TelegramChannelConfig содержит настройки telegram канала.
type TelegramChannelConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_ALERTING_TELEGRAM_ENABLED" env-default:"false"`

	// BotToken — токен бота от @BotFather.
	BotToken string `yaml:"botToken" env:"BR_ALERTING_TELEGRAM_BOT_TOKEN"`

	// ChatIDs — числовые ID или @username публичных каналов.
	ChatIDs []string `yaml:"chatIds" env:"BR_ALERTING_TELEGRAM_CHAT_IDS" env-separator:","`

	Timeout time.Duration `yaml:"timeout" env:"BR_ALERTING_TELEGRAM_TIMEOUT" env-default:"10s"`
}

// WebhookChannelConfig содержит настройки webhook канала.
type WebhookChannelConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_ALERTING_WEBHOOK_ENABLED" env-default:"false"`

	// URLs — алерт отправляется на каждый.
	URLs []string `yaml:"urls" env:"BR_ALERTING_WEBHOOK_URLS" env-separator:","`

	// Headers доступны только через YAML: cleanenv не читает map из env.
	Headers map[string]string `yaml:"headers"`

	Timeout    time.Duration `yaml:"timeout" env:"BR_ALERTING_WEBHOOK_TIMEOUT" env-default:"10s"`
	MaxRetries int           `yaml:"maxRetries" env:"BR_ALERTING_WEBHOOK_MAX_RETRIES" env-default:"3"`
}

// ToAlerting конвертирует конфигурацию в alerting.Config.
func (ac *AlertingConfig) ToAlerting() alerting.Config {
	return alerting.Config{
		Enabled:         ac.Enabled,
		RateLimitWindow: ac.RateLimitWindow,
		Telegram: alerting.TelegramConfig{
			Enabled:  ac.Telegram.Enabled,
			BotToken: ac.Telegram.BotToken,
			ChatIDs:  ac.Telegram.ChatIDs,
			Timeout:  ac.Telegram.Timeout,
		},
		Webhook: alerting.WebhookConfig{
			Enabled:    ac.Webhook.Enabled,
			URLs:       ac.Webhook.URLs,
			Headers:    ac.Webhook.Headers,
			Timeout:    ac.Webhook.Timeout,
			MaxRetries: ac.Webhook.MaxRetries,
		},
	}
}

func isAlertingConfigPresent(cfg *AlertingConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Enabled ||
		cfg.Telegram.Enabled || cfg.Telegram.BotToken != "" ||
		cfg.Webhook.Enabled || len(cfg.Webhook.URLs) > 0
}

// getDefaultAlertingConfig возвращает конфигурацию по умолчанию (алертинг выключен).
func getDefaultAlertingConfig() *AlertingConfig {
	return &AlertingConfig{
		RateLimitWindow: alerting.DefaultRateLimitWindow,
		Telegram: TelegramChannelConfig{
			Timeout: alerting.DefaultTelegramTimeout,
		},
		Webhook: WebhookChannelConfig{
			Timeout:    alerting.DefaultWebhookTimeout,
			MaxRetries: alerting.DefaultMaxRetries,
		},
		Rules: alerting.RulesConfig{
			MinSeverity: "INFO",
		},
	}
}

// validateAlertingConfig — проверка при загрузке: только наличие обязательных полей.
// Формат URL и заголовков проверяет alerting.Config.Validate при создании Alerter.
func validateAlertingConfig(ac *AlertingConfig) error {
	if !ac.Enabled {
		return nil
	}
	if ac.Telegram.Enabled {
		if ac.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram: bot_token обязателен")
		}
		if len(ac.Telegram.ChatIDs) == 0 {
			return fmt.Errorf("alerting.telegram: хотя бы один chat_id обязателен")
		}
	}
	if ac.Webhook.Enabled && len(ac.Webhook.URLs) == 0 {
		return fmt.Errorf("alerting.webhook: хотя бы один URL обязателен")
	}
	return nil
}

// loadAlertingConfig берёт секцию alerting из YAML, если она задана. BR_ALERTING_* применяются поверх.
func loadAlertingConfig(l *slog.Logger, cfg *Config) *AlertingConfig {
	var fromFile *AlertingConfig
	if cfg.AppConfig != nil {
		fromFile = &cfg.AppConfig.Alerting
	}
	return loadSection(l, "alerting", fromFile, isAlertingConfigPresent, getDefaultAlertingConfig)
}
