package loopynctest

import (
	"time"

	"github.com/Kargones/loopcheck/internal/config"
)

// Config возвращает конфигурацию loopcheck, нацеленную на сервер:
// seed-учётные данные, без истории, метрик, трейсинга и алертинга.
func (s *Server) Config() *config.Config {
	return &config.Config{
		TargetConfig: &config.TargetConfig{
			BaseURL:        s.URL(),
			Timeout:        5 * time.Second,
			DemoEmail:      DemoEmail,
			DemoPassword:   DemoPassword,
			PeerHandle:     PeerHandle,
			PeerUserID:     PeerUserID,
			StrangerUserID: StrangerUserID,
		},
		RunConfig:      &config.RunConfig{},
		HistoryConfig:  &config.HistoryConfig{RecentLimit: 20},
		MonitorConfig:  &config.MonitorConfig{Interval: time.Second},
		LoggingConfig:  &config.LoggingConfig{Level: "error"},
		MetricsConfig:  &config.MetricsConfig{JobName: "loopcheck", Timeout: time.Second},
		TracingConfig:  &config.TracingConfig{},
		AlertingConfig: &config.AlertingConfig{},
	}
}
