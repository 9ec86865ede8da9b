package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "с причиной",
			err:      NewAppError(ErrRunFailed, "прогон завершился с ошибками", errors.New("3 шага")),
			expected: "RUN.FAILED: прогон завершился с ошибками (3 шага)",
		},
		{
			name:     "без причины",
			err:      NewAppError(ErrSuiteUnknown, "неизвестный набор", nil),
			expected: "SUITE.UNKNOWN: неизвестный набор",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewAppError(ErrConfigLoad, "не удалось загрузить конфигурацию", cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, cause, appErr.Unwrap())
}

func TestAppError_JSONHidesCause(t *testing.T) {
	appErr := NewAppError(ErrHistoryDisabled, "история отключена", errors.New("secret dsn"))

	data, err := json.Marshal(appErr)
	require.NoError(t, err)

	assert.JSONEq(t, `{"code":"HISTORY.DISABLED","message":"история отключена"}`, string(data))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewAppError(ErrCommandExec, "сбой", nil))

	assert.Equal(t, ErrCommandExec, CodeOf(wrapped, "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", CodeOf(errors.New("plain"), "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", CodeOf(nil, "UNKNOWN"))
}
