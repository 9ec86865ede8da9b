package history

import (
	"errors"

	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
)

// Коды ошибок хранилища истории.
const (
	ErrHistoryConnect = "HISTORY.CONNECT"
	ErrHistorySchema  = "HISTORY.SCHEMA"
	ErrHistorySave    = "HISTORY.SAVE"
	ErrHistoryQuery   = "HISTORY.QUERY"
)

// ErrNotConnected возвращается при обращении к хранилищу до Connect.
var ErrNotConnected = errors.New("соединение не установлено")

func newError(code, message string, cause error) *apperrors.AppError {
	return apperrors.NewAppError(code, message, cause)
}
