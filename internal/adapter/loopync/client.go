package loopync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

// maxBodySize ограничивает размер читаемого тела ответа.
const maxBodySize = 8 << 20

// Options — параметры клиента.
type Options struct {
	// BaseURL — адрес API, включая префикс /api.
	BaseURL string
	// Timeout — таймаут одного запроса. 0 — constants.DefaultTimeout.
	Timeout time.Duration
	// RateLimit — запросов в секунду. 0 — без ограничения.
	RateLimit float64
	// RateBurst — допустимый всплеск запросов.
	RateBurst int
	// UserAgent — заголовок User-Agent.
	UserAgent string
	// HTTPClient — транспорт. nil — http.Client с Timeout.
	HTTPClient *http.Client
	// Logger — логгер запросов (уровень Debug).
	Logger logging.Logger
}

// Client — HTTP клиент API Loopync.
//
// Client безопасен для конкурентного использования. Токен хранится внутри
// клиента и подставляется в заголовок Authorization каждого запроса.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     logging.Logger

	mu    sync.RWMutex
	token string
}

// NewClient создаёт клиент API.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, NewAPIError(ErrTransport, fmt.Sprintf("некорректный базовый URL %q", opts.BaseURL), err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// BaseURL возвращает базовый адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken устанавливает bearer токен для последующих запросов.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token возвращает текущий bearer токен.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// WithToken возвращает копию клиента с другим токеном.
// Транспорт и лимитер запросов общие с исходным клиентом.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		limiter:    c.limiter,
		userAgent:  c.userAgent,
		logger:     c.logger,
		token:      token,
	}
}

// Response — ответ сервера. Не-2xx статусы не являются ошибкой Go.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Method     string
	Path       string
	Duration   time.Duration
}

// OK сообщает, что статус ответа 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode декодирует JSON тело ответа в v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &APIError{
			Code:       ErrDecode,
			Message:    fmt.Sprintf("%s %s: некорректный JSON ответа", r.Method, r.Path),
			StatusCode: r.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// Detail возвращает поле detail ответа FastAPI.
// Для ошибок валидации (detail — массив) склеивает поля msg,
// для тела без detail возвращает усечённое тело.
func (r *Response) Detail() string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return r.Snippet(200)
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(envelope.Detail)
}

// Snippet возвращает начало тела ответа не длиннее n байт.
// Многобайтовый символ на границе в срез не попадает.
func (r *Response) Snippet(n int) string {
	body := strings.TrimSpace(string(r.Body))
	if len(body) <= n {
		return body
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}

// Err возвращает *APIError для не-2xx ответа и nil для 2xx.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return NewAPIErrorWithStatus(ErrHTTPStatus,
		fmt.Sprintf("%s %s вернул %d", r.Method, r.Path, r.StatusCode),
		r.StatusCode, r.Detail())
}

// DecodeAs декодирует тело ответа в новое значение типа T.
func DecodeAs[T any](r *Response) (*T, error) {
	v := new(T)
	if err := r.Decode(v); err != nil {
		return nil, err
	}
	return v, nil
}

// do выполняет запрос. body сериализуется в JSON, если не nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewAPIError(ErrRateLimit, fmt.Sprintf("%s %s: ожидание лимитера прервано", method, path), err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, NewAPIError(ErrDecode, fmt.Sprintf("%s %s: сериализация тела запроса", method, path), err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ctx, span := tracing.StartHTTP(ctx, method, path)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		tracing.EndHTTP(span, 0, err)
		return nil, NewAPIError(ErrTransport, fmt.Sprintf("%s %s: создание запроса", method, path), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.EndHTTP(span, 0, err)
		c.logger.Debug("Запрос к API не выполнен", "method", method, "path", path, "error", err)
		return nil, NewAPIError(ErrTransport, fmt.Sprintf("%s %s: запрос не выполнен", method, path), err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Ошибка закрытия тела ответа", "path", path, "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		tracing.EndHTTP(span, resp.StatusCode, err)
		return nil, NewAPIError(ErrTransport, fmt.Sprintf("%s %s: чтение тела ответа", method, path), err)
	}
	tracing.EndHTTP(span, resp.StatusCode, nil)

	result := &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header,
		Method:     method,
		Path:       path,
		Duration:   time.Since(start),
	}
	c.logger.Debug("Запрос к API выполнен",
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, query, body)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, query, nil)
}

// escape кодирует сегмент пути.
func escape(segment string) string {
	return url.PathEscape(segment)
}
