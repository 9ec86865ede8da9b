package alerting

import "errors"

var (
	// ErrTelegramBotTokenRequired — канал telegram включён без токена бота.
	ErrTelegramBotTokenRequired = errors.New("alerting: bot_token is required when telegram channel is enabled")
	// ErrTelegramChatIDRequired — не задан ни один chat_id.
	ErrTelegramChatIDRequired = errors.New("alerting: at least one chat_id is required when telegram channel is enabled")
	// ErrTelegramChatIDInvalid — chat_id не число и не @username.
	ErrTelegramChatIDInvalid = errors.New("alerting: chat_id must be a numeric ID or @username")
	// ErrWebhookURLRequired — канал webhook включён без URL.
	ErrWebhookURLRequired = errors.New("alerting: at least one url is required when webhook channel is enabled")
	// ErrWebhookURLInvalid — URL без схемы http(s) или хоста.
	ErrWebhookURLInvalid = errors.New("alerting: webhook url has invalid format (must have http(s) scheme and host)")
	// ErrWebhookHeaderInvalid — заголовок содержит управляющие символы.
	ErrWebhookHeaderInvalid = errors.New("alerting: webhook header contains invalid characters")
)
