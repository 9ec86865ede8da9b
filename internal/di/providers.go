package di

import (
	"context"
	"log/slog"
	"os"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/adapter/realtime"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/history"
	"github.com/Kargones/loopcheck/internal/pkg/alerting"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/progress"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/suites"
)

// ProvideLogger создаёт Logger на основе LoggingConfig из Config.
//
// Если LoggingConfig == nil или поля пусты, используются значения по умолчанию:
//   - Level: "info"
//   - Format: "text"
//   - Output: "stderr"
func ProvideLogger(cfg *config.Config) logging.Logger {
	logCfg := logging.DefaultConfig()

	if cfg != nil && cfg.LoggingConfig != nil {
		lc := cfg.LoggingConfig
		if lc.Level != "" {
			logCfg.Level = lc.Level
		}
		if lc.Format != "" {
			logCfg.Format = lc.Format
		}
		if lc.Output != "" {
			logCfg.Output = lc.Output
		}
		if lc.FilePath != "" {
			logCfg.FilePath = lc.FilePath
		}
		// Нулевые размеры ротации не имеют смысла для lumberjack, оставляем default.
		if lc.MaxSize > 0 {
			logCfg.MaxSize = lc.MaxSize
		}
		if lc.MaxBackups > 0 {
			logCfg.MaxBackups = lc.MaxBackups
		}
		if lc.MaxAge > 0 {
			logCfg.MaxAge = lc.MaxAge
		}
		logCfg.Compress = lc.Compress
		logCfg.AddSource = lc.AddSource
	}

	return logging.NewLogger(logCfg)
}

// ProvideOutputWriter создаёт Writer по BR_OUTPUT_FORMAT ("json" или "text").
// Формат берётся из окружения, а не из Config: его переключают без правки файла.
func ProvideOutputWriter() output.Writer {
	format := os.Getenv(constants.EnvOutputFormat)
	if format == "" {
		format = output.FormatText
	}
	return output.NewWriter(format)
}

// ProvideTraceID генерирует trace_id запуска (32 hex символа).
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideAlerter создаёт Alerter из AlertingConfig.
// При отсутствии конфигурации или ошибке возвращает NopAlerter.
func ProvideAlerter(cfg *config.Config, logger logging.Logger) alerting.Alerter {
	if cfg == nil || cfg.AlertingConfig == nil {
		return alerting.NewNopAlerter()
	}

	alerter, err := alerting.NewAlerter(cfg.AlertingConfig.ToAlerting(), cfg.AlertingConfig.Rules, logger)
	if err != nil {
		logger.Error("ошибка создания Alerter, используется NopAlerter",
			slog.String("error", err.Error()),
		)
		return alerting.NewNopAlerter()
	}
	return alerter
}

// MetricsConfig конвертирует config.MetricsConfig в metrics.Config.
func MetricsConfig(cfg *config.Config) metrics.Config {
	if cfg == nil || cfg.MetricsConfig == nil {
		return metrics.DefaultConfig()
	}
	return metrics.Config{
		Enabled:        cfg.MetricsConfig.Enabled,
		PushgatewayURL: cfg.MetricsConfig.PushgatewayURL,
		JobName:        cfg.MetricsConfig.JobName,
		Timeout:        cfg.MetricsConfig.Timeout,
		InstanceLabel:  cfg.MetricsConfig.InstanceLabel,
	}
}

// ProvideMetricsCollector создаёт Collector из MetricsConfig.
// Если метрики выключены или коллектор не создаётся, возвращает NopCollector.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil || cfg.MetricsConfig == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(MetricsConfig(cfg), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider инициализирует OTel TracerProvider и возвращает shutdown.
// При отключённом трейсинге или ошибке возвращает nop shutdown.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil || cfg.TracingConfig == nil {
		return tracing.NewNopTracerProvider()
	}

	tracingCfg := tracing.Config{
		Enabled:      cfg.TracingConfig.Enabled,
		Endpoint:     cfg.TracingConfig.Endpoint,
		ServiceName:  cfg.TracingConfig.ServiceName,
		Version:      constants.Version,
		Environment:  cfg.TracingConfig.Environment,
		Insecure:     cfg.TracingConfig.Insecure,
		Timeout:      cfg.TracingConfig.Timeout,
		SamplingRate: cfg.TracingConfig.SamplingRate,
	}

	shutdown, err := tracing.NewTracerProvider(tracingCfg, logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}

// ProvideClient создаёт HTTP клиент Loopync API.
// Ошибка означает невалидный BaseURL: без клиента запускать нечего.
func ProvideClient(cfg *config.Config, logger logging.Logger) (*loopync.Client, error) {
	tc := cfg.TargetConfig
	return loopync.NewClient(loopync.Options{
		BaseURL:   tc.BaseURL,
		Timeout:   tc.Timeout,
		RateLimit: tc.RateLimit,
		RateBurst: tc.RateBurst,
		UserAgent: tc.UserAgent,
		Logger:    logger,
	})
}

// ProvideProbe создаёт пробу Socket.IO. Адрес берётся из RealtimeURL
// или выводится из BaseURL. Если адрес не получается, возвращает nil:
// набор realtime будет пропущен.
func ProvideProbe(cfg *config.Config, logger logging.Logger) *realtime.Probe {
	tc := cfg.TargetConfig
	wsURL := tc.RealtimeURL
	if wsURL == "" {
		derived, err := urlutil.SocketIOURL(tc.BaseURL)
		if err != nil {
			logger.Warn("не удалось вывести адрес Socket.IO из base url",
				slog.String("base_url", urlutil.MaskURL(tc.BaseURL)),
				slog.String("error", err.Error()),
			)
			return nil
		}
		wsURL = derived
	}

	probe, err := realtime.NewProbe(realtime.Options{
		URL:       wsURL,
		Timeout:   tc.Timeout,
		UserAgent: tc.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		logger.Warn("проба realtime не создана, набор будет пропущен",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return probe
}

// ProvideSuiteOptions собирает общие зависимости наборов.
func ProvideSuiteOptions(cfg *config.Config, client *loopync.Client, probe *realtime.Probe) suites.Options {
	return suites.NewOptions(cfg.TargetConfig, client, probe)
}

// ProvideHistoryStore открывает хранилище истории. Недоступная база не мешает
// прогону: логируется ошибка и возвращается UnavailableStore с её причиной.
func ProvideHistoryStore(cfg *config.Config, logger logging.Logger) (history.Store, func()) {
	if cfg == nil || cfg.HistoryConfig == nil || !cfg.HistoryConfig.Enabled {
		return history.NopStore{}, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HistoryConfig.Timeout)
	defer cancel()

	store, err := history.Open(ctx, cfg.HistoryConfig, logger)
	if err != nil {
		logger.Error("хранилище истории недоступно, история не сохраняется",
			slog.String("server", cfg.HistoryConfig.Server),
			slog.String("error", err.Error()),
		)
		return history.UnavailableStore{Err: err}, func() {}
	}

	return store, func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("ошибка закрытия хранилища истории", slog.String("error", closeErr.Error()))
		}
	}
}

// ProvideProgress выбирает вывод прогресса по окружению.
func ProvideProgress() progress.Progress {
	return progress.New(progress.Options{})
}

// ProvideRunner создаёт раннер сценариев.
func ProvideRunner(cfg *config.Config, logger logging.Logger, collector metrics.Collector, prog progress.Progress) *scenario.Runner {
	return scenario.NewRunner(scenario.RunnerOptions{
		BaseURL:  cfg.TargetConfig.BaseURL,
		FailFast: cfg.RunConfig.FailFast,
		Logger:   logger,
		Metrics:  collector,
		Progress: prog,
	})
}
