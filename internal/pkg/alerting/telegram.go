package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// TelegramParseMode — режим разметки сообщений Bot API.
const TelegramParseMode = "Markdown"

const maxTelegramResponseSize = 1024

// TelegramAlerter отправляет алерт в чаты Telegram через Bot API.
type TelegramAlerter struct {
	config     TelegramConfig
	logger     logging.Logger
	httpClient HTTPClient
}

// NewTelegramAlerter создаёт канал Telegram.
func NewTelegramAlerter(config TelegramConfig, logger logging.Logger) *TelegramAlerter {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTelegramTimeout
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = TelegramAPIBaseURL
	}
	return &TelegramAlerter{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient подменяет HTTP клиент.
func (t *TelegramAlerter) SetHTTPClient(client HTTPClient) {
	t.httpClient = client
}

// Send отправляет алерт во все чаты. Всегда возвращает nil.
func (t *TelegramAlerter) Send(ctx context.Context, alert Alert) error {
	message := formatTelegramMessage(alert)

	delivered := 0
	for _, chatID := range t.config.ChatIDs {
		if ctx.Err() != nil {
			t.logger.Debug("отправка telegram алерта отменена", "error_code", alert.ErrorCode)
			return nil
		}
		if err := t.sendToChat(ctx, chatID, message); err != nil {
			t.logger.Error("ошибка отправки telegram алерта",
				"error", err.Error(),
				"chat_id", chatID,
				"error_code", alert.ErrorCode,
			)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		t.logger.Info("telegram алерт отправлен",
			"error_code", alert.ErrorCode,
			"chats_success", delivered,
			"chats_total", len(t.config.ChatIDs),
		)
	} else if len(t.config.ChatIDs) > 0 {
		t.logger.Warn("telegram алерт не доставлен ни в один чат",
			"error_code", alert.ErrorCode,
			"chats_total", len(t.config.ChatIDs),
		)
	}
	return nil
}

func formatTelegramMessage(alert Alert) string {
	var sb strings.Builder

	sb.WriteString("🚨 *" + constants.AppName + "*\n\n")
	sb.WriteString("*Error:* `" + escapeMarkdown(alert.ErrorCode) + "`\n")
	sb.WriteString("*Severity:* " + escapeMarkdown(alert.Severity.String()) + "\n")
	sb.WriteString("*Command:* " + escapeMarkdown(alert.Command) + "\n")
	if alert.BaseURL != "" {
		sb.WriteString("*Target:* " + escapeMarkdown(alert.BaseURL) + "\n")
	}

	sb.WriteString("\n" + escapeMarkdown(alert.Message) + "\n")

	failures, hidden := truncatedFailures(alert.Failures)
	if len(failures) > 0 {
		sb.WriteString("\n*Failed steps:*\n")
		for _, f := range failures {
			sb.WriteString("• " + escapeMarkdown(f) + "\n")
		}
		if hidden > 0 {
			fmt.Fprintf(&sb, "…и ещё %d\n", hidden)
		}
	}

	sb.WriteString("\n_Trace ID:_ `" + escapeMarkdown(alert.TraceID) + "`\n")
	sb.WriteString("_Time:_ " + escapeMarkdown(alert.Timestamp.Format(time.RFC3339)))
	return sb.String()
}

var markdownReplacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	">", "\\>",
)

func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

func (t *TelegramAlerter) sendToChat(ctx context.Context, chatID, message string) error {
	endpoint := t.config.APIBaseURL + t.config.BotToken + "/sendMessage"

	body, err := json.Marshal(telegramRequest{ChatID: chatID, Text: message, ParseMode: TelegramParseMode})
	if err != nil {
		return fmt.Errorf("сериализация запроса: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %s", t.redact(err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// Текст ошибки net/http содержит URL, а в нём токен бота.
		return fmt.Errorf("HTTP запрос не выполнен: %s", t.redact(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTelegramResponseSize))
	if err != nil {
		return fmt.Errorf("чтение ответа: %w", err)
	}
	var tr telegramResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return fmt.Errorf("разбор ответа: %w", err)
	}
	if !tr.OK {
		return fmt.Errorf("telegram API error %d: %s", tr.ErrorCode, tr.Description)
	}
	return nil
}

func (t *TelegramAlerter) redact(s string) string {
	if t.config.BotToken == "" {
		return s
	}
	return strings.ReplaceAll(s, t.config.BotToken, "[REDACTED]")
}
