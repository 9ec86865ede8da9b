package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger создаёт Logger по конфигурации.
//
// Output="file" пишет в файл с ротацией через lumberjack, в остальных
// случаях логи идут в os.Stderr. Неизвестный Output не теряет логи:
// выводится предупреждение и используется stderr.
func NewLogger(config Config) Logger {
	var w io.Writer
	switch config.Output {
	case OutputFile:
		w = newRotatingWriter(config)
	case OutputStderr, "":
		w = os.Stderr
	default:
		bootstrapWarn("неизвестный logging output %q, используется stderr", config.Output)
		w = os.Stderr
	}
	return NewLoggerWithWriter(config, w)
}

// newRotatingWriter создаёт writer с ротацией. Директория создаётся при
// необходимости; при ошибке возвращается os.Stderr.
func newRotatingWriter(config Config) io.Writer {
	if config.FilePath == "" {
		bootstrapWarn("logging output=file, но путь к файлу пуст, используется stderr")
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			bootstrapWarn("не удалось создать директорию логов %q: %v, используется stderr", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// NewLoggerWithWriter создаёт Logger поверх произвольного writer.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	return NewSlogAdapter(slog.New(newHandler(config, w)))
}

func newHandler(config Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(config.Level),
		AddSource: config.AddSource,
	}
	if config.AddSource {
		opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok {
					src.File = filepath.Base(src.File)
				}
			}
			return a
		}
	}
	if config.Format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel переводит строковый уровень в slog.Level. Неизвестное значение даёт info.
func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func bootstrapWarn(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "WARNING: "+format+"\n", args...) //nolint:errcheck // bootstrap stderr
}
