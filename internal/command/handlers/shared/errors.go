// Package shared содержит общие части обработчиков команд: разбор режима
// вывода, запись результата и ошибок, получение зависимостей из DI.
package shared

import (
	"errors"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
)

// ExitCode переводит ошибку команды в код завершения процесса:
// RUN.FAILED — проверки не прошли, CONFIG.* — ошибка конфигурации,
// остальное — ошибка выполнения команды.
func ExitCode(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return constants.ExitCommandFail
	}
	switch appErr.Code {
	case apperrors.ErrRunFailed:
		return constants.ExitChecksFail
	case apperrors.ErrConfigLoad, apperrors.ErrConfigValidate:
		return constants.ExitConfigError
	default:
		return constants.ExitCommandFail
	}
}
