package output

import (
	"io"
	"strings"
)

// Поддерживаемые форматы вывода.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Writer форматирует результат команды.
type Writer interface {
	Write(w io.Writer, result *Result) error
}

// NewWriter создаёт Writer по имени формата (без учёта регистра).
// Неизвестный формат даёт TextWriter.
func NewWriter(format string) Writer {
	if strings.EqualFold(format, FormatJSON) {
		return NewJSONWriter()
	}
	return NewTextWriter()
}

// IsJSON сообщает, запрошен ли JSON вывод.
func IsJSON(format string) bool {
	return strings.EqualFold(format, FormatJSON)
}
