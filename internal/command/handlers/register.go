// Package handlers регистрирует все команды в глобальном реестре.
// Регистрация явная, без init(), чтобы граф зависимостей был виден из main.
package handlers

import (
	"github.com/Kargones/loopcheck/internal/command/handlers/help"
	"github.com/Kargones/loopcheck/internal/command/handlers/historyhandler"
	"github.com/Kargones/loopcheck/internal/command/handlers/listhandler"
	"github.com/Kargones/loopcheck/internal/command/handlers/monitorhandler"
	"github.com/Kargones/loopcheck/internal/command/handlers/planhandler"
	"github.com/Kargones/loopcheck/internal/command/handlers/runhandler"
	"github.com/Kargones/loopcheck/internal/command/handlers/version"
)

// RegisterAll регистрирует все команды. Вызывается один раз из main().
func RegisterAll() error {
	for _, register := range []func() error{
		runhandler.RegisterCmd,
		planhandler.RegisterCmd,
		listhandler.RegisterCmd,
		monitorhandler.RegisterCmd,
		historyhandler.RegisterCmd,
		version.RegisterCmd,
		help.RegisterCmd,
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}
