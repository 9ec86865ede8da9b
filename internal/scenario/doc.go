// Package scenario — ядро прогона проверок.
//
// Сценарий состоит из наборов (Suite), набор из шагов (Step). Runner
// выполняет шаги строго последовательно: каждый шаг читает и дополняет
// общее состояние (State), например токен после логина или id треда
// после его открытия. Шаг, которому не хватает ключей из Requires,
// пропускается с указанием недостающего ключа.
//
// Итог прогона — Report: по одному StepResult на каждый выполненный или
// пропущенный шаг, в порядке выполнения.
//
// # Политика остановки
//
//   - FailFast останавливает прогон на первом падении;
//   - падение критичного набора (auth) прерывает оставшиеся наборы;
//   - отмена контекста останавливает прогон между шагами, Run возвращает
//     частичный отчёт и ctx.Err().
package scenario
