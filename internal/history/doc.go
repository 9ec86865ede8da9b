// Package history хранит историю прогонов в Microsoft SQL Server.
//
// Каждый прогон — строка в loopcheck_runs и по строке на шаг
// в loopcheck_steps. Таблицы создаются EnsureSchema при первом
// подключении. Когда история отключена, используется NopStore.
//
// # Типы ошибок
//
//   - HISTORY.CONNECT — не удалось подключиться или ping не прошёл;
//   - HISTORY.SCHEMA — не удалось создать таблицы;
//   - HISTORY.SAVE — ошибка записи прогона, транзакция откатывается;
//   - HISTORY.QUERY — ошибка чтения истории.
//
// # Тестирование
//
// Тесты используют DATA-DOG/go-sqlmock: MSSQLStore принимает готовый
// *sql.DB через NewMSSQLStoreWithDB.
package history
