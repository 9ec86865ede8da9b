package suites

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// detailsLimit — сколько байт тела ответа попадает в Details упавшего шага.
const detailsLimit = 500

func requestFailed(err error) scenario.Outcome {
	return scenario.Fail("запрос не выполнен: %v", err)
}

func decodeFailed(err error) scenario.Outcome {
	return scenario.Fail("не удалось разобрать ответ: %v", err)
}

func unexpectedStatus(resp *loopync.Response, want int) scenario.Outcome {
	return scenario.Fail("ожидался HTTP %d, получен %d: %s", want, resp.StatusCode, resp.Detail()).
		WithDetails(resp.Snippet(detailsLimit))
}

// expectStatus проверяет транспорт и код ответа.
func expectStatus(resp *loopync.Response, err error, want int) (scenario.Outcome, bool) {
	if err != nil {
		return requestFailed(err), false
	}
	if resp.StatusCode != want {
		return unexpectedStatus(resp, want), false
	}
	return scenario.Outcome{}, true
}

// expectJSON проверяет транспорт, HTTP 200 и форму тела по схеме.
// Пустое имя схемы отключает проверку формы.
func expectJSON(resp *loopync.Response, err error, schemaName string) (scenario.Outcome, bool) {
	if out, ok := expectStatus(resp, err, http.StatusOK); !ok {
		return out, false
	}
	return conforms(resp, schemaName)
}

// conforms проверяет тело ответа по схеме.
func conforms(resp *loopync.Response, schemaName string) (scenario.Outcome, bool) {
	if schemaName == "" {
		return scenario.Outcome{}, true
	}
	if err := schema.Validate(schemaName, resp.Body); err != nil {
		return scenario.Fail("ответ не соответствует схеме %s", schemaName).WithDetails(err.Error()), false
	}
	return scenario.Outcome{}, true
}

// isNotConfigured распознаёт 500 стенда без ключей Agora.
func isNotConfigured(resp *loopync.Response) bool {
	return resp.StatusCode == http.StatusInternalServerError &&
		strings.Contains(strings.ToLower(resp.Detail()), "not configured")
}

// friendsWith сообщает, числится ли userID в друзьях у otherID.
func friendsWith(ctx context.Context, client *loopync.Client, userID, otherID string) (bool, error) {
	resp, err := client.GetUser(ctx, otherID)
	if err != nil {
		return false, err
	}
	if !resp.OK() {
		return false, resp.Err()
	}
	user, err := loopync.DecodeAs[loopync.User](resp)
	if err != nil {
		return false, err
	}
	return slices.Contains(user.Friends, userID), nil
}

// shortID возвращает короткий уникальный суффикс для имён тестовых сущностей.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
