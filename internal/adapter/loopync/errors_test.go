package loopync_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *loopync.APIError
		expected string
	}{
		{
			name:     "без причины и detail",
			err:      loopync.NewAPIError(loopync.ErrRateLimit, "лимит", nil),
			expected: "[LOOPYNC.RATE_LIMIT] лимит",
		},
		{
			name:     "с причиной",
			err:      loopync.NewAPIError(loopync.ErrTransport, "GET /posts: запрос не выполнен", errors.New("connection refused")),
			expected: "[LOOPYNC.TRANSPORT] GET /posts: запрос не выполнен: connection refused",
		},
		{
			name:     "с detail",
			err:      loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "POST /dm/thread вернул 403", 403, "Must be friends to start a conversation"),
			expected: "[LOOPYNC.HTTP_STATUS] POST /dm/thread вернул 403: Must be friends to start a conversation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAPIError_StatusHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		notFound     bool
		forbidden    bool
		unauthorized bool
		badRequest   bool
		already      bool
		serverError  bool
	}{
		{name: "404", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 404, "Room not found"), notFound: true},
		{name: "403", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 403, "You can only call friends"), forbidden: true},
		{name: "401", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 401, "Invalid email or password"), unauthorized: true},
		{name: "400 already", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 400, "Already friends"), badRequest: true, already: true},
		{name: "400 already sent", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 400, "Friend request already sent"), badRequest: true, already: true},
		{name: "400 прочее", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 400, "Cannot send friend request to yourself"), badRequest: true},
		{name: "500", err: loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 500, "Agora credentials not configured"), serverError: true},
		{name: "обёрнутая", err: fmt.Errorf("шаг: %w", loopync.NewAPIErrorWithStatus(loopync.ErrHTTPStatus, "m", 404, "x")), notFound: true},
		{name: "транспорт", err: loopync.NewAPIError(loopync.ErrTransport, "m", errors.New("eof"))},
		{name: "чужая ошибка", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.notFound, loopync.IsNotFound(tt.err))
			assert.Equal(t, tt.forbidden, loopync.IsForbidden(tt.err))
			assert.Equal(t, tt.unauthorized, loopync.IsUnauthorized(tt.err))
			assert.Equal(t, tt.badRequest, loopync.IsBadRequest(tt.err))
			assert.Equal(t, tt.already, loopync.IsAlready(tt.err))
			assert.Equal(t, tt.serverError, loopync.IsServerError(tt.err))
		})
	}
}

func TestAPIError_AsAppError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("wrap: %w", loopync.NewAPIError(loopync.ErrTransport, "запрос не выполнен", cause))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, loopync.ErrTransport, appErr.Code)
	assert.Equal(t, "запрос не выполнен", appErr.Message)
	assert.ErrorIs(t, err, cause)
	assert.True(t, loopync.IsTransport(err))
	assert.Equal(t, loopync.ErrTransport, apperrors.CodeOf(err, "X"))
}
