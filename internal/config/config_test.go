package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "loopcheck.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("BR_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := MustLoad()
	require.NoError(t, err)

	assert.Nil(t, cfg.AppConfig)
	assert.Equal(t, constants.DefaultBaseURL, cfg.TargetConfig.BaseURL)
	assert.Equal(t, constants.DefaultDemoEmail, cfg.TargetConfig.DemoEmail)
	assert.Equal(t, constants.DefaultPeerUserID, cfg.TargetConfig.PeerUserID)
	assert.Equal(t, constants.DefaultTimeout, cfg.TargetConfig.Timeout)
	assert.Empty(t, cfg.RunConfig.Suites)
	assert.False(t, cfg.HistoryConfig.Enabled)
	assert.Equal(t, 1433, cfg.HistoryConfig.Port)
	assert.Equal(t, constants.DefaultMonitorInterval, cfg.MonitorConfig.Interval)
	assert.Equal(t, "text", cfg.LoggingConfig.Format)
	assert.False(t, cfg.MetricsConfig.Enabled)
	assert.False(t, cfg.TracingConfig.Enabled)
	assert.False(t, cfg.AlertingConfig.Enabled)
}

func TestMustLoad_YAMLWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
target:
  baseUrl: http://localhost:8001/api
  demoEmail: qa@loopync.com
  demoPassword: secret
  peerHandle: vibekween
  timeout: 5s
run:
  suites: [auth, posts]
  failFast: true
history:
  enabled: true
  server: mssql.local
  database: qa
monitor:
  interval: 1m
  listen: 127.0.0.1:9999
logging:
  level: debug
  format: json
`)
	t.Setenv("BR_CONFIG_PATH", path)
	t.Setenv("LOOPCHECK_DEMO_PASSWORD", "from-env")

	cfg, err := MustLoad()
	require.NoError(t, err)
	require.NotNil(t, cfg.AppConfig)

	assert.Equal(t, "http://localhost:8001/api", cfg.TargetConfig.BaseURL)
	assert.Equal(t, "qa@loopync.com", cfg.TargetConfig.DemoEmail)
	assert.Equal(t, "from-env", cfg.TargetConfig.DemoPassword)
	assert.Equal(t, "vibekween", cfg.TargetConfig.PeerHandle)
	assert.Equal(t, 5*time.Second, cfg.TargetConfig.Timeout)
	assert.Equal(t, constants.DefaultStrangerUserID, cfg.TargetConfig.StrangerUserID)
	assert.Equal(t, []string{"auth", "posts"}, cfg.RunConfig.Suites)
	assert.True(t, cfg.RunConfig.FailFast)
	assert.True(t, cfg.HistoryConfig.Enabled)
	assert.Equal(t, "qa", cfg.HistoryConfig.Database)
	assert.Equal(t, time.Minute, cfg.MonitorConfig.Interval)
	assert.Equal(t, "127.0.0.1:9999", cfg.MonitorConfig.Listen)
	assert.Equal(t, "debug", cfg.LoggingConfig.Level)
	assert.Equal(t, "json", cfg.LoggingConfig.Format)
}

func TestMustLoad_InvalidTarget(t *testing.T) {
	t.Setenv("BR_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOOPCHECK_BASE_URL", "ftp://example.com")

	_, err := MustLoad()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base url")
}

func TestMustLoad_BrokenYAMLFallsBackToEnv(t *testing.T) {
	t.Setenv("BR_CONFIG_PATH", writeConfig(t, "target: [unclosed"))

	cfg, err := MustLoad()
	require.NoError(t, err)
	assert.Nil(t, cfg.AppConfig)
	assert.Equal(t, constants.DefaultBaseURL, cfg.TargetConfig.BaseURL)
}

func TestMustLoad_DisablesInvalidOptionalSections(t *testing.T) {
	t.Setenv("BR_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BR_ALERTING_ENABLED", "true")
	t.Setenv("BR_ALERTING_WEBHOOK_ENABLED", "true")
	t.Setenv("BR_METRICS_ENABLED", "true")
	t.Setenv("BR_TRACING_ENABLED", "true")
	t.Setenv("BR_HISTORY_ENABLED", "true")
	t.Setenv("LOOPCHECK_MONITOR_INTERVAL", "10ms")

	cfg, err := MustLoad()
	require.NoError(t, err)

	assert.False(t, cfg.AlertingConfig.Enabled, "webhook без URL")
	assert.False(t, cfg.MetricsConfig.Enabled, "без pushgateway")
	assert.False(t, cfg.TracingConfig.Enabled, "без endpoint")
	assert.False(t, cfg.HistoryConfig.Enabled, "без сервера")
	assert.Equal(t, constants.DefaultMonitorInterval, cfg.MonitorConfig.Interval)
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("BR_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := MustLoad()
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyOverrides(Overrides{
		BaseURL:    "http://127.0.0.1:8080/api",
		Suites:     []string{"dm"},
		FailFast:   true,
		Seed:       true,
		Interval:   2 * time.Minute,
		Iterations: 3,
		Limit:      5,
	}))
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.TargetConfig.BaseURL)
	assert.Equal(t, []string{"dm"}, cfg.RunConfig.Suites)
	assert.True(t, cfg.RunConfig.FailFast)
	assert.True(t, cfg.TargetConfig.Seed)
	assert.Equal(t, 2*time.Minute, cfg.MonitorConfig.Interval)
	assert.Equal(t, 3, cfg.MonitorConfig.MaxIterations)
	assert.Equal(t, 5, cfg.HistoryConfig.RecentLimit)

	assert.Error(t, cfg.ApplyOverrides(Overrides{BaseURL: "not a url"}))
}

func TestValidateTargetConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TargetConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*TargetConfig) {}},
		{name: "без пароля", mutate: func(tc *TargetConfig) { tc.DemoPassword = "" }, wantErr: true},
		{name: "нулевой timeout", mutate: func(tc *TargetConfig) { tc.Timeout = 0 }, wantErr: true},
		{name: "отрицательный rate", mutate: func(tc *TargetConfig) { tc.RateLimit = -1 }, wantErr: true},
		{name: "realtime wss", mutate: func(tc *TargetConfig) { tc.RealtimeURL = "wss://host/socket.io/" }},
		{name: "realtime http", mutate: func(tc *TargetConfig) { tc.RealtimeURL = "http://host/" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := getDefaultTargetConfig()
			tt.mutate(tc)
			err := validateTargetConfig(tc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAlertingConfig_ToAlerting(t *testing.T) {
	ac := getDefaultAlertingConfig()
	ac.Enabled = true
	ac.Webhook.Enabled = true
	ac.Webhook.URLs = []string{"https://hooks.local/qa"}

	converted := ac.ToAlerting()
	assert.True(t, converted.Enabled)
	assert.Equal(t, []string{"https://hooks.local/qa"}, converted.Webhook.URLs)
	assert.Equal(t, 3, converted.Webhook.MaxRetries)
	assert.NoError(t, converted.Validate())
}
