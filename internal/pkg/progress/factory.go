package progress

import (
	"os"
	"strings"
)

// New выбирает реализацию Progress по окружению:
// 1. BR_SHOW_PROGRESS=false → NoopProgress
// 2. BR_OUTPUT_FORMAT=json && BR_PROGRESS_STREAM=true → JSONProgress
// 3. BR_OUTPUT_FORMAT=json → NoopProgress, stdout занят JSON результатом
// 4. Иначе → LineProgress, цвет только для терминала
func New(opts Options) Progress {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	if os.Getenv("BR_SHOW_PROGRESS") == "false" {
		return NewNoOp()
	}

	if strings.EqualFold(os.Getenv("BR_OUTPUT_FORMAT"), "json") {
		if os.Getenv("BR_PROGRESS_STREAM") == "true" {
			return NewJSONProgress(opts)
		}
		return NewNoOp()
	}

	opts.Color = IsTTY(opts.Output)
	return NewLineProgress(opts)
}
