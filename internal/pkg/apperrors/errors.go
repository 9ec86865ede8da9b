// Package apperrors предоставляет структурированные ошибки приложения.
// Назван apperrors, чтобы не конфликтовать со стандартным errors.
package apperrors

import (
	"errors"
	"fmt"
)

// Коды ошибок в формате CATEGORY.SPECIFIC_ERROR.
const (
	// CONFIG — загрузка и валидация конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// COMMAND — выполнение команд CLI.
	ErrCommandNotFound = "COMMAND.NOT_FOUND"
	ErrCommandExec     = "COMMAND.EXEC_FAILED"

	// OUTPUT — форматирование вывода.
	ErrOutputFormat = "OUTPUT.FORMAT_FAILED"

	// SUITE — выбор наборов сценариев.
	ErrSuiteUnknown = "SUITE.UNKNOWN"

	// RUN — результат прогона сценариев.
	ErrRunFailed    = "RUN.FAILED"
	ErrRunCancelled = "RUN.CANCELLED"

	// HISTORY — хранилище истории прогонов.
	ErrHistoryDisabled = "HISTORY.DISABLED"
)

// AppError представляет структурированную ошибку приложения.
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (пароли, токены).
type AppError struct {
	// Code — машиночитаемый код ошибки в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message — человекочитаемое описание ошибки.
	Message string `json:"message"`

	// Cause — исходная ошибка, в JSON не сериализуется.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт новый AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf возвращает код первой AppError в цепочке или fallback.
func CodeOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}
