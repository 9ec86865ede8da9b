package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
)

// maxResponseBodySize ограничивает чтение тела ответа получателя.
const maxResponseBodySize = 1024

// HTTPClient — минимальный интерфейс HTTP клиента, подменяется в тестах.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookPayload — JSON тело запроса webhook.
type WebhookPayload struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Command   string    `json:"command"`
	BaseURL   string    `json:"base_url,omitempty"`
	Failures  []string  `json:"failures,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Hostname  string    `json:"hostname,omitempty"`
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// WebhookAlerter отправляет алерт POST запросом на каждый URL с повторами.
// На 4xx повтор не делается.
type WebhookAlerter struct {
	config     WebhookConfig
	logger     logging.Logger
	httpClient HTTPClient
	hostname   string
	// backoff — пауза перед первым повтором, удваивается до maxBackoff.
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewWebhookAlerter создаёт канал webhook.
func NewWebhookAlerter(config WebhookConfig, logger logging.Logger) *WebhookAlerter {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultWebhookTimeout
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &WebhookAlerter{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		hostname:   hostname,
		backoff:    time.Second,
		maxBackoff: 4 * time.Second,
	}
}

// SetHTTPClient подменяет HTTP клиент.
func (w *WebhookAlerter) SetHTTPClient(client HTTPClient) {
	w.httpClient = client
}

// Send отправляет алерт на все URL. Всегда возвращает nil.
func (w *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(w.payload(alert))
	if err != nil {
		w.logger.Error("не удалось сериализовать webhook алерт", "error", err.Error())
		return nil
	}

	delivered := 0
	for _, target := range w.config.URLs {
		if ctx.Err() != nil {
			w.logger.Debug("отправка webhook алерта отменена", "error_code", alert.ErrorCode)
			return nil
		}
		if err := w.sendWithRetry(ctx, target, payload); err != nil {
			w.logger.Error("ошибка отправки webhook алерта",
				"error", err.Error(),
				"url", urlutil.MaskURL(target),
				"error_code", alert.ErrorCode,
			)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		w.logger.Info("webhook алерт отправлен",
			"error_code", alert.ErrorCode,
			"urls_success", delivered,
			"urls_total", len(w.config.URLs),
		)
	} else if len(w.config.URLs) > 0 {
		w.logger.Warn("webhook алерт не доставлен ни на один URL",
			"error_code", alert.ErrorCode,
			"urls_total", len(w.config.URLs),
		)
	}
	return nil
}

func (w *WebhookAlerter) payload(alert Alert) WebhookPayload {
	failures, _ := truncatedFailures(alert.Failures)
	return WebhookPayload{
		ErrorCode: alert.ErrorCode,
		Message:   alert.Message,
		Severity:  alert.Severity.String(),
		Command:   alert.Command,
		BaseURL:   alert.BaseURL,
		Failures:  failures,
		TraceID:   alert.TraceID,
		RunID:     alert.RunID,
		Timestamp: alert.Timestamp,
		Source:    constants.AppName,
		Hostname:  w.hostname,
	}
}

func (w *WebhookAlerter) sendWithRetry(ctx context.Context, target string, body []byte) error {
	backoff := w.backoff
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, w.maxBackoff)
			w.logger.Debug("повтор webhook",
				"attempt", attempt,
				"error", lastErr.Error(),
				"url", urlutil.MaskURL(target),
			)
		}

		lastErr = w.post(ctx, target, body)
		if lastErr == nil {
			return nil
		}
		var httpErr *httpError
		if errors.As(lastErr, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			return lastErr
		}
	}
	return fmt.Errorf("все %d попыток неудачны: %w", w.config.MaxRetries+1, lastErr)
}

func (w *WebhookAlerter) post(ctx context.Context, target string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize)) //nolint:errcheck // тело только для диагностики
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &httpError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
