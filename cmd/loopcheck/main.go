// Package main содержит точку входа loopcheck: проверки работоспособности
// бэкенда Loopync по HTTP API и Socket.IO.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/command/handlers"
	"github.com/Kargones/loopcheck/internal/command/handlers/shared"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/di"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
)

func main() {
	if err := handlers.RegisterAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось зарегистрировать команды: %v\n", err)
		os.Exit(constants.ExitCommandFail)
	}
	os.Exit(run(os.Args, os.Stderr))
}

// run разбирает аргументы, выполняет команду и возвращает exit code.
// os.Exit вызывается только в main, чтобы отработали все defer
// (tracerShutdown, span.End, cleanup хранилища).
func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := constants.ExitOK
	app := newCLI(stderr, &exitCode)
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Ошибка разбора аргументов: %v\n", err)
		return constants.ExitConfigError
	}
	return exitCode
}

// newCLI строит cli.App с подкомандой на каждый зарегистрированный handler.
func newCLI(stderr io.Writer, exitCode *int) *cli.App {
	action := func(name string) cli.ActionFunc {
		return func(c *cli.Context) error {
			*exitCode = execute(c.Context, name, overridesFrom(c), stderr)
			return nil
		}
	}

	all := command.All()
	commands := make([]*cli.Command, 0, len(all))
	for _, name := range command.Names() {
		commands = append(commands, &cli.Command{
			Name:   name,
			Usage:  all[name].Description(),
			Flags:  commandFlags(),
			Action: action(name),
		})
	}

	return &cli.App{
		Name:      constants.AppName,
		Usage:     "проверка работоспособности бэкенда Loopync",
		Version:   constants.Version,
		Writer:    os.Stdout,
		ErrWriter: stderr,
		HideHelp:  true,
		Commands:  commands,
		// Без команды выводится help.
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				fmt.Fprintf(stderr, "Неизвестная команда: %s\n", c.Args().First())
				*exitCode = constants.ExitCommandFail
				return nil
			}
			return action(constants.ActHelp)(c)
		},
	}
}

func commandFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "suite", Aliases: []string{"s"}, Usage: "набор для запуска, можно повторять"},
		&cli.StringFlag{Name: "base-url", Usage: "адрес API стенда, включая /api"},
		&cli.BoolFlag{Name: "fail-fast", Usage: "остановить прогон после первого упавшего шага"},
		&cli.BoolFlag{Name: "seed", Usage: "вызвать POST /seed перед прогоном"},
		&cli.DurationFlag{Name: "interval", Usage: "интервал между прогонами monitor"},
		&cli.IntFlag{Name: "iterations", Usage: "число прогонов monitor, 0 без ограничения"},
		&cli.IntFlag{Name: "limit", Usage: "число записей history"},
	}
}

func overridesFrom(c *cli.Context) config.Overrides {
	return config.Overrides{
		BaseURL:    c.String("base-url"),
		Suites:     c.StringSlice("suite"),
		FailFast:   c.Bool("fail-fast"),
		Seed:       c.Bool("seed"),
		Interval:   c.Duration("interval"),
		Iterations: c.Int("iterations"),
		Limit:      c.Int("limit"),
	}
}

// execute загружает конфигурацию, собирает зависимости и выполняет команду name.
func execute(ctx context.Context, name string, overrides config.Overrides, stderr io.Writer) int {
	cfg, err := config.MustLoad()
	if err != nil || cfg == nil {
		fmt.Fprintf(stderr, "Не удалось загрузить конфигурацию приложения: %v\n", err)
		return constants.ExitConfigError
	}
	if err = cfg.ApplyOverrides(overrides); err != nil {
		fmt.Fprintf(stderr, "Некорректные параметры запуска: %v\n", err)
		return constants.ExitConfigError
	}
	cfg.Command = name

	l := cfg.Logger
	l.Debug("Информация о сборке",
		slog.String("version", constants.Version),
		slog.String("commit", constants.Commit),
	)

	handler, ok := command.Get(name)
	if !ok {
		fmt.Fprintf(stderr, "Неизвестная команда: %s\n", name)
		return constants.ExitCommandFail
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Не удалось собрать зависимости: %v\n", err)
		return constants.ExitConfigError
	}
	defer cleanup()

	traceID := app.TraceID
	ctx = tracing.WithTraceID(ctx, traceID)
	ctx = tracing.ContextWithOTelTraceID(ctx, traceID)
	ctx = di.WithApp(ctx, app)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.TracerShutdown(shutdownCtx); err != nil {
			app.Logger.Error("ошибка завершения tracing",
				slog.String("error", err.Error()),
				slog.String("trace_id", traceID),
				slog.String("command", name),
			)
		}
	}()

	tracer := otel.Tracer(constants.AppName)
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("command", name),
			attribute.String("base_url", urlutil.MaskURL(cfg.TargetConfig.BaseURL)),
			attribute.String("trace_id", traceID),
		),
	)
	defer span.End()

	collector := app.MetricsCollector
	collector.RecordCommandStart(name)
	start := time.Now()

	execErr := handler.Execute(ctx, cfg)

	collector.RecordCommandEnd(name, time.Since(start), execErr == nil)
	// Контекст может быть уже отменён сигналом, метрики всё равно отправляются.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.MetricsConfig.Timeout)
	defer cancel()
	_ = collector.Push(pushCtx)

	code := shared.ExitCode(execErr)
	if execErr != nil {
		span.RecordError(execErr)
		span.SetStatus(otelcodes.Error, execErr.Error())
		app.Logger.Error("Ошибка выполнения команды",
			slog.String("command", name),
			slog.String("trace_id", traceID),
			slog.String("error", execErr.Error()),
			slog.Int("exit_code", code),
		)
	}
	return code
}
