package output

import (
	"fmt"
	"strconv"
)

// SummaryInfo — сводка по результату команды.
type SummaryInfo struct {
	KeyMetrics    []KeyMetric `json:"key_metrics,omitempty"`
	WarningsCount int         `json:"warnings_count"`
	Warnings      []string    `json:"warnings,omitempty"`
}

// KeyMetric — одна ключевая метрика сводки.
type KeyMetric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// NewSummaryInfo создаёт пустую сводку.
func NewSummaryInfo() *SummaryInfo {
	return &SummaryInfo{
		KeyMetrics: make([]KeyMetric, 0),
		Warnings:   make([]string, 0),
	}
}

// AddMetric добавляет метрику.
func (s *SummaryInfo) AddMetric(name, value, unit string) {
	s.KeyMetrics = append(s.KeyMetrics, KeyMetric{Name: name, Value: value, Unit: unit})
}

// AddCount добавляет целочисленную метрику.
func (s *SummaryInfo) AddCount(name string, n int, unit string) {
	s.AddMetric(name, strconv.Itoa(n), unit)
}

// AddPercent добавляет метрику-процент с одним знаком после запятой.
func (s *SummaryInfo) AddPercent(name string, ratio float64) {
	s.AddMetric(name, fmt.Sprintf("%.1f", ratio*100), "%")
}

// AddWarning добавляет предупреждение.
func (s *SummaryInfo) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
	s.WarningsCount++
}
