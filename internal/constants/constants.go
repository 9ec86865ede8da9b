// Package constants содержит общие константы loopcheck.
package constants

import "time"

// Version и Commit заполняются при сборке через -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
)

// Константы приложения.
const (
	// AppName — имя приложения в логах, метриках и трассировке.
	AppName = "loopcheck"
	// APIVersion — версия формата JSON вывода.
	APIVersion = "v1"
	// UserAgent — значение заголовка User-Agent по умолчанию.
	UserAgent = "loopcheck/" + APIVersion
)

// Целевой стенд по умолчанию.
const (
	// DefaultBaseURL — preview-стенд Loopync, включая префикс /api.
	DefaultBaseURL = "https://socialverse-62.preview.emergentagent.com/api"
	// DefaultDemoEmail — email демо-пользователя из seed данных.
	DefaultDemoEmail = "demo@loopync.com"
	// DefaultDemoPassword — пароль демо-пользователя из seed данных.
	DefaultDemoPassword = "password123"
	// DefaultPeerHandle — handle seed-пользователя, с которым проверяются друзья, DM и звонки.
	DefaultPeerHandle = "vibekween"
	// DefaultPeerUserID — id того же пользователя, если поиск не дал результата.
	DefaultPeerUserID = "u1"
	// DefaultStrangerUserID — seed-пользователь, который не должен быть в друзьях у демо-пользователя.
	DefaultStrangerUserID = "u3"
	// DefaultTimeout — таймаут одного HTTP запроса.
	DefaultTimeout = 30 * time.Second
	// DefaultRateLimit — запросов в секунду к целевому стенду.
	DefaultRateLimit = 5.0
	// DefaultRateBurst — допустимый всплеск запросов.
	DefaultRateBurst = 5
)

// Режим monitor.
const (
	DefaultMonitorInterval = 5 * time.Minute
	DefaultMonitorListen   = ":9464"
)

// Переменные окружения режимов выполнения.
const (
	EnvOutputFormat = "BR_OUTPUT_FORMAT"
	EnvDryRun       = "BR_DRY_RUN"
	EnvPlanOnly     = "BR_PLAN_ONLY"
	EnvVerbose      = "BR_VERBOSE"
	EnvConfigPath   = "BR_CONFIG_PATH"
)

// DefaultConfigPath — путь к YAML конфигурации, если BR_CONFIG_PATH не задан.
const DefaultConfigPath = "loopcheck.yaml"

// Имена команд.
const (
	ActRun     = "run"
	ActPlan    = "plan"
	ActList    = "list"
	ActMonitor = "monitor"
	ActHistory = "history"
	ActVersion = "version"
	ActHelp    = "help"
)

// Коды завершения процесса.
const (
	ExitOK          = 0
	ExitChecksFail  = 2
	ExitConfigError = 5
	ExitCommandFail = 8
)
