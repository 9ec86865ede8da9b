// Package loopynctest предоставляет in-memory реализацию API Loopync для тестов.
//
// Server поднимает httptest.Server с маршрутизатором gorilla/mux и повторяет
// поведение стенда, на которое опираются сценарии:
//   - заявки в друзья идемпотентны: повторная заявка и заявка другу дают 400 с "already";
//   - принятие заявки создаёт дружбу в обе стороны и диалог;
//   - диалог и звонок возможны только между друзьями (403);
//   - без настроенного Agora звонки и токены отвечают 500 "Agora credentials not configured";
//   - POST /seed пересоздаёт демо-данные.
//
// Пример использования:
//
//	srv := loopynctest.NewServer(t)
//	client, _ := loopync.NewClient(loopync.Options{BaseURL: srv.URL()})
//	resp, _ := client.Login(ctx, loopynctest.DemoEmail, loopynctest.DemoPassword)
//
// С опцией WithRealtime сервер также принимает Socket.IO (Engine.IO v4)
// соединения по WebSocket на /socket.io/.
package loopynctest
