package tracing

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID возвращает 32 hex-символа, совместимые с W3C trace-id.
// Если источник случайности недоступен, используется время и счётчик.
func GenerateTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fallbackTraceID()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	return fmt.Sprintf("%016x%016x", uint64(time.Now().UnixNano()), counter)
}
