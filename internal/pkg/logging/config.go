package logging

// Форматы вывода логов.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Уровни логирования.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Куда писать логи.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Значения по умолчанию. Используются в ProvideLogger и в config.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/loopcheck.log"
	DefaultMaxSize    = 50 // MB
	DefaultMaxBackups = 5
	DefaultMaxAge     = 14 // days
	DefaultCompress   = true
)

// Config содержит настройки логирования.
type Config struct {
	// Format — "json" или "text".
	Format string
	// Level — "debug", "info", "warn", "error".
	Level string
	// Output — "stderr" или "file".
	Output string
	// FilePath — путь к файлу логов при Output="file".
	FilePath string
	// MaxSize — размер файла в МБ до ротации.
	MaxSize int
	// MaxBackups — сколько ротированных файлов хранить.
	MaxBackups int
	// MaxAge — сколько дней хранить ротированные файлы.
	MaxAge int
	// Compress — сжимать ротированные файлы в gzip.
	Compress bool
	// AddSource — добавлять в запись файл и строку вызова.
	AddSource bool
}

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}
