package alerting

import (
	"net/url"
	"time"
)

// Значения по умолчанию.
const (
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultTelegramTimeout = 10 * time.Second
	DefaultMaxRetries      = 3
	// TelegramAPIBaseURL — базовый URL Bot API, к нему добавляется токен.
	TelegramAPIBaseURL = "https://api.telegram.org/bot"
)

// Config содержит настройки алертинга.
type Config struct {
	Enabled bool
	// RateLimitWindow — не чаще одного алерта с одним ErrorCode за окно.
	RateLimitWindow time.Duration
	Telegram        TelegramConfig
	Webhook         WebhookConfig
}

// TelegramConfig — настройки канала Telegram.
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	// ChatIDs — числовые id (в том числе отрицательные для групп) или @username.
	ChatIDs []string
	Timeout time.Duration
	// APIBaseURL переопределяет TelegramAPIBaseURL.
	APIBaseURL string
}

// WebhookConfig — настройки канала webhook.
type WebhookConfig struct {
	Enabled    bool
	URLs       []string
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig возвращает конфигурацию по умолчанию (алертинг выключен).
func DefaultConfig() Config {
	return Config{
		RateLimitWindow: DefaultRateLimitWindow,
		Telegram:        TelegramConfig{Timeout: DefaultTelegramTimeout},
		Webhook:         WebhookConfig{Timeout: DefaultWebhookTimeout, MaxRetries: DefaultMaxRetries},
	}
}

// Validate проверяет включённые каналы.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	return c.Webhook.Validate()
}

// Validate проверяет настройки Telegram.
func (t *TelegramConfig) Validate() error {
	if !t.Enabled {
		return nil
	}
	if t.BotToken == "" {
		return ErrTelegramBotTokenRequired
	}
	if len(t.ChatIDs) == 0 {
		return ErrTelegramChatIDRequired
	}
	for _, chatID := range t.ChatIDs {
		if !validChatID(chatID) {
			return ErrTelegramChatIDInvalid
		}
	}
	return nil
}

func validChatID(chatID string) bool {
	if chatID == "" {
		return false
	}
	if chatID[0] == '@' {
		return len(chatID) > 1
	}
	digits := chatID
	if digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// Validate проверяет настройки webhook.
func (w *WebhookConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if len(w.URLs) == 0 {
		return ErrWebhookURLRequired
	}
	for _, rawURL := range w.URLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrWebhookURLInvalid
		}
	}
	for key, value := range w.Headers {
		if containsInvalidHeaderChars(key) || containsInvalidHeaderChars(value) {
			return ErrWebhookHeaderInvalid
		}
	}
	return nil
}

// containsInvalidHeaderChars ищет управляющие символы (кроме HTAB),
// через которые можно внедрить заголовок.
func containsInvalidHeaderChars(s string) bool {
	for _, r := range s {
		if r == '\t' {
			continue
		}
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}
