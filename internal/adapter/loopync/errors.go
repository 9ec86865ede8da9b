package loopync

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
)

// Коды ошибок клиента Loopync.
const (
	// ErrTransport — сбой HTTP транспорта (DNS, TCP, TLS, таймаут, отмена контекста)
	ErrTransport = "LOOPYNC.TRANSPORT"
	// ErrDecode — ошибка кодирования запроса или декодирования ответа
	ErrDecode = "LOOPYNC.DECODE"
	// ErrRateLimit — ожидание лимитера запросов прервано
	ErrRateLimit = "LOOPYNC.RATE_LIMIT"
	// ErrHTTPStatus — сервер вернул не-2xx статус
	ErrHTTPStatus = "LOOPYNC.HTTP_STATUS"
)

// APIError представляет ошибку обращения к API Loopync.
type APIError struct {
	// Code — код ошибки (одна из констант Err*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// StatusCode — HTTP статус ответа, 0 для ошибок транспорта
	StatusCode int
	// Detail — поле detail из тела ответа FastAPI
	Detail string
	// Cause — исходная ошибка (если есть)
	Cause error
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *APIError) ErrorCode() string {
	return e.Code
}

// As поддерживает преобразование APIError в apperrors.AppError через errors.As.
func (e *APIError) As(target any) bool {
	if t, ok := target.(**apperrors.AppError); ok {
		*t = &apperrors.AppError{
			Code:    e.Code,
			Message: e.Message,
			Cause:   e.Cause,
		}
		return true
	}
	return false
}

// NewAPIError создаёт ошибку клиента без HTTP статуса.
func NewAPIError(code, message string, cause error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAPIErrorWithStatus создаёт ошибку ответа сервера.
func NewAPIErrorWithStatus(code, message string, statusCode int, detail string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

func statusOf(err error) (int, string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode, apiErr.Detail, true
	}
	return 0, "", false
}

// IsNotFound проверяет, что сервер ответил 404.
func IsNotFound(err error) bool {
	code, _, ok := statusOf(err)
	return ok && code == http.StatusNotFound
}

// IsForbidden проверяет, что сервер ответил 403.
func IsForbidden(err error) bool {
	code, _, ok := statusOf(err)
	return ok && code == http.StatusForbidden
}

// IsUnauthorized проверяет, что сервер ответил 401.
func IsUnauthorized(err error) bool {
	code, _, ok := statusOf(err)
	return ok && code == http.StatusUnauthorized
}

// IsBadRequest проверяет, что сервер ответил 400.
func IsBadRequest(err error) bool {
	code, _, ok := statusOf(err)
	return ok && code == http.StatusBadRequest
}

// IsAlready проверяет идемпотентный отказ: 400 с "already" в detail
// ("Already friends", "Friend request already sent", "Request already processed").
func IsAlready(err error) bool {
	code, detail, ok := statusOf(err)
	return ok && code == http.StatusBadRequest && strings.Contains(strings.ToLower(detail), "already")
}

// IsServerError проверяет, что сервер ответил 5xx.
func IsServerError(err error) bool {
	code, _, ok := statusOf(err)
	return ok && code >= http.StatusInternalServerError
}

// IsTransport проверяет, что запрос не дошёл до сервера.
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrTransport
}
