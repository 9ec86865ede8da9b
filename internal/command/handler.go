// Package command содержит интерфейс обработчика и реестр команд CLI.
// Обработчики регистрируются явно из handlers.RegisterAll, main.go
// строит подкоманды по содержимому реестра.
package command

import (
	"context"

	"github.com/Kargones/loopcheck/internal/config"
)

// Handler определяет интерфейс обработчика команды.
type Handler interface {
	// Name возвращает имя команды, совпадает с константами constants.Act*.
	Name() string

	// Description возвращает описание команды для вывода в help.
	Description() string

	// Execute выполняет команду. Ошибка с кодом RUN.FAILED означает, что
	// команда отработала, но часть проверок не прошла.
	Execute(ctx context.Context, cfg *config.Config) error
}
