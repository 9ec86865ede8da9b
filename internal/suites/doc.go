// Package suites описывает наборы проверок Loopync: auth, friends, dm,
// calls, rooms, posts, venues и realtime.
//
// Каждый набор — конструктор func(Options) scenario.Suite. Наборы зависят
// друг от друга через состояние прогона: auth кладёт токен и id
// пользователя, friends — id собеседника и факт дружбы, которые читают
// dm, calls и rooms. Build добавляет недостающие зависимости и
// упорядочивает наборы по реестру.
//
// Тело каждого ответа с известной формой проверяется по JSON Schema из
// пакета schema; расхождение со схемой — падение шага с текстом ошибки
// валидации в Details.
package suites
