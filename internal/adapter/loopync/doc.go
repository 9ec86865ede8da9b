// Package loopync предоставляет HTTP клиент API стенда Loopync.
//
// Клиент не интерпретирует коды ответа: любой ответ сервера, включая 4xx и 5xx,
// возвращается как *Response, а шаги сценариев сами решают, что считать
// успехом. Ошибкой Go считаются только сбои транспорта, превышение лимита
// запросов и ошибки декодирования.
//
// # Типы ошибок
//
//   - ErrTransport — сбой сети или отмена контекста
//   - ErrRateLimit — ожидание лимитера прервано
//   - ErrDecode — тело ответа не соответствует ожидаемому JSON
//   - ErrHTTPStatus — сервер вернул не-2xx (только через Response.Err)
//
// Для проверки ответа используйте IsNotFound, IsForbidden, IsUnauthorized,
// IsBadRequest, IsAlready и IsServerError.
//
// # Тестирование
//
// Пакет loopynctest содержит in-memory реализацию API на gorilla/mux и httptest.
package loopync
