package di

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/history"
	"github.com/Kargones/loopcheck/internal/pkg/alerting"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/metrics"
	"github.com/Kargones/loopcheck/internal/pkg/output"
)

// testConfig возвращает минимальную конфигурацию для стенда baseURL.
func testConfig(baseURL string) *config.Config {
	return &config.Config{
		TargetConfig: &config.TargetConfig{
			BaseURL:        baseURL,
			Timeout:        5 * time.Second,
			UserAgent:      constants.UserAgent,
			DemoEmail:      constants.DefaultDemoEmail,
			DemoPassword:   constants.DefaultDemoPassword,
			PeerHandle:     constants.DefaultPeerHandle,
			PeerUserID:     constants.DefaultPeerUserID,
			StrangerUserID: constants.DefaultStrangerUserID,
		},
		RunConfig:     &config.RunConfig{},
		HistoryConfig: &config.HistoryConfig{},
		LoggingConfig: &config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func TestProvideLogger_WithNilConfig(t *testing.T) {
	var cfg *config.Config
	assert.NotNil(t, ProvideLogger(cfg), "ProvideLogger должен работать при nil Config")
}

func TestProvideLogger_WithNilLoggingConfig(t *testing.T) {
	assert.NotNil(t, ProvideLogger(&config.Config{}))
}

func TestProvideOutputWriter(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   any
	}{
		{name: "json", format: "json", want: &output.JSONWriter{}},
		{name: "text", format: "text", want: &output.TextWriter{}},
		{name: "по умолчанию", format: "", want: &output.TextWriter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(constants.EnvOutputFormat, tt.format)
			assert.IsType(t, tt.want, ProvideOutputWriter())
		})
	}
}

func TestProvideTraceID_FormatAndUniqueness(t *testing.T) {
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := ProvideTraceID()
		require.Regexp(t, hex32, id)
		require.False(t, seen[id], "trace_id не должен повторяться")
		seen[id] = true
	}
}

func TestProvideAlerter_NilConfigReturnsNop(t *testing.T) {
	assert.IsType(t, &alerting.NopAlerter{}, ProvideAlerter(nil, logging.NewNopLogger()))
	assert.IsType(t, &alerting.NopAlerter{}, ProvideAlerter(&config.Config{}, logging.NewNopLogger()))
}

func TestProvideAlerter_InvalidTelegramReturnsNop(t *testing.T) {
	cfg := &config.Config{AlertingConfig: &config.AlertingConfig{Enabled: true}}
	cfg.AlertingConfig.Telegram.Enabled = true

	alerter := ProvideAlerter(cfg, logging.NewNopLogger())

	assert.IsType(t, &alerting.NopAlerter{}, alerter, "без токена бота должен использоваться NopAlerter")
}

func TestProvideMetricsCollector(t *testing.T) {
	t.Run("nil конфигурация", func(t *testing.T) {
		assert.IsType(t, &metrics.NopCollector{}, ProvideMetricsCollector(&config.Config{}, logging.NewNopLogger()))
	})
	t.Run("выключены", func(t *testing.T) {
		cfg := &config.Config{MetricsConfig: &config.MetricsConfig{Enabled: false}}
		assert.IsType(t, &metrics.NopCollector{}, ProvideMetricsCollector(cfg, logging.NewNopLogger()))
	})
	t.Run("без pushgateway", func(t *testing.T) {
		cfg := &config.Config{MetricsConfig: &config.MetricsConfig{Enabled: true, JobName: "loopcheck", Timeout: time.Second}}
		assert.IsType(t, &metrics.NopCollector{}, ProvideMetricsCollector(cfg, logging.NewNopLogger()))
	})
	t.Run("включены", func(t *testing.T) {
		cfg := &config.Config{MetricsConfig: &config.MetricsConfig{
			Enabled:        true,
			PushgatewayURL: "http://pushgateway:9091",
			JobName:        "loopcheck",
			Timeout:        time.Second,
			InstanceLabel:  "ci",
		}}
		assert.IsType(t, &metrics.PrometheusCollector{}, ProvideMetricsCollector(cfg, logging.NewNopLogger()))
	})
}

func TestProvideTracerProvider_DisabledIsNop(t *testing.T) {
	cfg := &config.Config{TracingConfig: &config.TracingConfig{Enabled: false}}
	shutdown := ProvideTracerProvider(cfg, logging.NewNopLogger())
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestProvideClient_InvalidBaseURL(t *testing.T) {
	_, err := ProvideClient(testConfig("ftp://example"), logging.NewNopLogger())
	assert.Error(t, err)
}

func TestProvideProbe(t *testing.T) {
	t.Run("выводится из base url", func(t *testing.T) {
		probe := ProvideProbe(testConfig("https://loopync.example/api"), logging.NewNopLogger())
		require.NotNil(t, probe)
		assert.Equal(t, "wss://loopync.example/socket.io/?EIO=4&transport=websocket", probe.URL())
	})
	t.Run("явный realtime url", func(t *testing.T) {
		cfg := testConfig("https://loopync.example/api")
		cfg.TargetConfig.RealtimeURL = "ws://localhost:8001/socket.io/?EIO=4&transport=websocket"
		probe := ProvideProbe(cfg, logging.NewNopLogger())
		require.NotNil(t, probe)
		assert.Equal(t, cfg.TargetConfig.RealtimeURL, probe.URL())
	})
	t.Run("некорректный realtime url", func(t *testing.T) {
		cfg := testConfig("https://loopync.example/api")
		cfg.TargetConfig.RealtimeURL = "http://localhost:8001"
		assert.Nil(t, ProvideProbe(cfg, logging.NewNopLogger()))
	})
}

func TestProvideHistoryStore_DisabledIsNop(t *testing.T) {
	store, cleanup := ProvideHistoryStore(testConfig("https://loopync.example/api"), logging.NewNopLogger())
	defer cleanup()

	assert.False(t, history.Enabled(store))
}

func TestProvideHistoryStore_OpenFailureIsUnavailable(t *testing.T) {
	cfg := testConfig("https://loopync.example/api")
	cfg.HistoryConfig = &config.HistoryConfig{Enabled: true, Server: "mssql.invalid", Port: 70000, Timeout: time.Second}

	store, cleanup := ProvideHistoryStore(cfg, logging.NewNopLogger())
	defer cleanup()

	assert.False(t, history.Enabled(store))
	openErr := history.Unavailable(store)
	require.Error(t, openErr)
	assert.Equal(t, history.ErrHistoryConnect, apperrors.CodeOf(openErr, ""))
	assert.NoError(t, store.Save(context.Background(), nil))
}

func TestProvideSuiteOptions(t *testing.T) {
	cfg := testConfig("https://loopync.example/api")
	cfg.TargetConfig.Seed = true
	client, err := ProvideClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)

	opts := ProvideSuiteOptions(cfg, client, nil)

	assert.Same(t, client, opts.Client)
	assert.Nil(t, opts.Probe)
	assert.True(t, opts.Seed)
	assert.Equal(t, constants.DefaultPeerHandle, opts.PeerHandle)
}
