package metrics

import (
	"context"
	"net/http"
	"time"
)

// NopCollector ничего не собирает.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordCommandStart ничего не делает.
func (c *NopCollector) RecordCommandStart(string) {}

// RecordCommandEnd ничего не делает.
func (c *NopCollector) RecordCommandEnd(string, time.Duration, bool) {}

// RecordStep ничего не делает.
func (c *NopCollector) RecordStep(string, string, string, time.Duration) {}

// RecordRun ничего не делает.
func (c *NopCollector) RecordRun(RunStats) {}

// Push всегда возвращает nil.
func (c *NopCollector) Push(context.Context) error { return nil }

// Handler отвечает 404: метрики выключены.
func (c *NopCollector) Handler() http.Handler { return http.NotFoundHandler() }
