package alerting

import "strings"

// RulesConfig — правила фильтрации алертов. Include-список имеет приоритет
// над exclude-списком того же измерения.
type RulesConfig struct {
	MinSeverity       string                        `yaml:"minSeverity" env:"BR_ALERTING_RULES_MIN_SEVERITY" env-default:"INFO"`
	ExcludeErrorCodes []string                      `yaml:"excludeErrorCodes" env:"BR_ALERTING_RULES_EXCLUDE_ERRORS" env-separator:","`
	IncludeErrorCodes []string                      `yaml:"includeErrorCodes" env:"BR_ALERTING_RULES_INCLUDE_ERRORS" env-separator:","`
	ExcludeCommands   []string                      `yaml:"excludeCommands" env:"BR_ALERTING_RULES_EXCLUDE_COMMANDS" env-separator:","`
	IncludeCommands   []string                      `yaml:"includeCommands" env:"BR_ALERTING_RULES_INCLUDE_COMMANDS" env-separator:","`
	Channels          map[string]ChannelRulesConfig `yaml:"channels"`
}

// ChannelRulesConfig полностью заменяет глобальные правила для канала.
type ChannelRulesConfig struct {
	MinSeverity       string   `yaml:"minSeverity"`
	ExcludeErrorCodes []string `yaml:"excludeErrorCodes"`
	IncludeErrorCodes []string `yaml:"includeErrorCodes"`
	ExcludeCommands   []string `yaml:"excludeCommands"`
	IncludeCommands   []string `yaml:"includeCommands"`
}

type rule struct {
	minSeverity Severity
	codes       filter
	commands    filter
}

type filter struct {
	include map[string]struct{}
	exclude map[string]struct{}
}

func (f filter) allows(value string) bool {
	if len(f.include) > 0 {
		_, ok := f.include[value]
		return ok
	}
	_, excluded := f.exclude[value]
	return !excluded
}

// RulesEngine решает, отправлять ли алерт в канал.
type RulesEngine struct {
	global   rule
	channels map[string]rule
}

// NewRulesEngine строит движок правил.
func NewRulesEngine(config RulesConfig) *RulesEngine {
	engine := &RulesEngine{
		global: newRule(config.MinSeverity, config.IncludeErrorCodes, config.ExcludeErrorCodes,
			config.IncludeCommands, config.ExcludeCommands),
		channels: make(map[string]rule, len(config.Channels)),
	}
	for name, ch := range config.Channels {
		engine.channels[name] = newRule(ch.MinSeverity, ch.IncludeErrorCodes, ch.ExcludeErrorCodes,
			ch.IncludeCommands, ch.ExcludeCommands)
	}
	return engine
}

// Evaluate возвращает true, если алерт проходит правила канала.
func (e *RulesEngine) Evaluate(alert Alert, channel string) bool {
	r, ok := e.channels[channel]
	if !ok {
		r = e.global
	}
	return alert.Severity >= r.minSeverity &&
		r.codes.allows(alert.ErrorCode) &&
		r.commands.allows(alert.Command)
}

func newRule(minSeverity string, includeCodes, excludeCodes, includeCommands, excludeCommands []string) rule {
	return rule{
		minSeverity: ParseSeverity(minSeverity),
		codes:       filter{include: toSet(includeCodes), exclude: toSet(excludeCodes)},
		commands:    filter{include: toSet(includeCommands), exclude: toSet(excludeCommands)},
	}
}

// ParseSeverity разбирает имя уровня без учёта регистра; неизвестное значение даёт INFO.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(s) {
	case "WARNING":
		return SeverityWarning
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}
