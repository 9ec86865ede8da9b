package realtime

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
)

// Коды ошибок проверки realtime канала.
const (
	// ErrDial — не удалось установить WebSocket соединение
	ErrDial = "REALTIME.DIAL"
	// ErrProtocol — сервер нарушил протокол Engine.IO/Socket.IO
	ErrProtocol = "REALTIME.PROTOCOL"
	// ErrRejected — сервер отклонил подключение к пространству имён
	ErrRejected = "REALTIME.REJECTED"
	// ErrTimeout — рукопожатие не завершилось за отведённое время
	ErrTimeout = "REALTIME.TIMEOUT"
)

// ErrConnectRejected — сервер ответил пакетом CONNECT_ERROR (44).
var ErrConnectRejected = errors.New("socket.io: подключение отклонено сервером")

// Error представляет ошибку проверки Socket.IO.
type Error struct {
	// Code — код ошибки (одна из констант Err*)
	Code string
	// Message — человекочитаемое описание ошибки
	Message string
	// StatusCode — HTTP статус ответа на upgrade (если сервер ответил не 101)
	StatusCode int
	// Cause — исходная ошибка (если есть)
	Cause error
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode возвращает машиночитаемый код ошибки.
func (e *Error) ErrorCode() string {
	return e.Code
}

// As поддерживает преобразование Error в apperrors.AppError через errors.As.
func (e *Error) As(target any) bool {
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

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// IsNotFound проверяет, что сервер ответил 404 на запрос upgrade,
// то есть realtime канал на стенде не развёрнут.
func IsNotFound(err error) bool {
	var rtErr *Error
	return errors.As(err, &rtErr) && rtErr.Code == ErrDial && rtErr.StatusCode == http.StatusNotFound
}

// IsRejected проверяет, что сервер отклонил подключение.
func IsRejected(err error) bool {
	return errors.Is(err, ErrConnectRejected)
}

// IsTimeout проверяет, что рукопожатие не уложилось в таймаут.
func IsTimeout(err error) bool {
	var rtErr *Error
	return errors.As(err, &rtErr) && rtErr.Code == ErrTimeout
}
