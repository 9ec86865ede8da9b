// Package dryrun определяет режимы выполнения без обращения к стенду.
// В dry-run и plan-only команды печатают план шагов вместо прогона.
package dryrun

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/output"
)

// Режимы выполнения в порядке приоритета.
const (
	ModeDryRun   = "dry-run"
	ModePlanOnly = "plan-only"
	ModeVerbose  = "verbose"
	ModeNormal   = "normal"
)

// IsDryRun сообщает, включён ли BR_DRY_RUN ("true" без учёта регистра или "1").
func IsDryRun() bool {
	return envFlag(constants.EnvDryRun)
}

// IsPlanOnly сообщает, включён ли BR_PLAN_ONLY.
func IsPlanOnly() bool {
	return envFlag(constants.EnvPlanOnly)
}

// IsVerbose сообщает, включён ли BR_VERBOSE: план печатается перед прогоном.
func IsVerbose() bool {
	return envFlag(constants.EnvVerbose)
}

func envFlag(name string) bool {
	val := os.Getenv(name)
	return strings.EqualFold(val, "true") || val == "1"
}

// EffectiveMode возвращает режим с наибольшим приоритетом:
// dry-run > plan-only > verbose > normal.
func EffectiveMode() string {
	switch {
	case IsDryRun():
		return ModeDryRun
	case IsPlanOnly():
		return ModePlanOnly
	case IsVerbose():
		return ModeVerbose
	default:
		return ModeNormal
	}
}

// WritePlanOnlyUnsupported печатает сообщение для команд без плана.
// Ошибка записи игнорируется: сообщение информационное.
func WritePlanOnlyUnsupported(w io.Writer, command string) error {
	fmt.Fprintf(w, "Команда %s не поддерживает отображение плана операций\n", command) //nolint:errcheck // best-effort output
	return nil
}

// BuildPlan собирает план команды со сводкой.
func BuildPlan(command string, steps []output.PlanStep, summary string) *output.DryRunPlan {
	return &output.DryRunPlan{
		Command:          command,
		Steps:            steps,
		Summary:          summary,
		ValidationPassed: true,
	}
}

var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Authorization: Bearer <jwt>
	{regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-_=.]+`), "${1}***"},
	// "password":"..." и "token":"..." в JSON телах
	{regexp.MustCompile(`(?i)("(?:password|newPassword|token|code)"\s*:\s*")[^"]*(")`), "${1}***${2}"},
	// password=... в DSN и query
	{regexp.MustCompile(`(?i)((?:password|pwd|token)=)[^;&\s]+`), "${1}***"},
	// user:password@host в URL
	{regexp.MustCompile(`(://[^:/@\s]+:)[^@\s]+(@)`), "${1}***${2}"},
}

// MaskSecrets скрывает пароли и токены в строке перед выводом в план или лог.
func MaskSecrets(s string) string {
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}
