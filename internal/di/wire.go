//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/loopcheck/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры приложения.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOutputWriter,
	ProvideTraceID,
	ProvideAlerter,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	ProvideClient,
	ProvideProbe,
	ProvideSuiteOptions,
	ProvideHistoryStore,
	ProvideProgress,
	ProvideRunner,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт App через Wire DI. Возвращаемая cleanup функция
// закрывает хранилище истории.
//
//	app, cleanup, err := di.InitializeApp(cfg)
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
