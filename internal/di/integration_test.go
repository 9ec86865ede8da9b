package di

import (
	"context"
	"testing"

	"github.com/google/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/adapter/loopync/loopynctest"
	"github.com/Kargones/loopcheck/internal/suites"
)

func TestInitializeApp_AllFieldsNonNil(t *testing.T) {
	cfg := testConfig("https://loopync.example/api")

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, cfg, app.Config)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.OutputWriter)
	assert.Len(t, app.TraceID, 32)
	assert.NotNil(t, app.Alerter)
	assert.NotNil(t, app.MetricsCollector)
	assert.NotNil(t, app.TracerShutdown)
	assert.NotNil(t, app.Client)
	assert.NotNil(t, app.Probe)
	assert.NotNil(t, app.History)
	assert.NotNil(t, app.Runner)
	assert.Same(t, app.Client, app.SuiteOptions.Client)
}

// ProviderSet доступен в обычной сборке без тега wireinject.
func TestProviderSet_OutsideWireinject(t *testing.T) {
	assert.NotPanics(t, func() { _ = ProviderSet })
	assert.IsType(t, wire.ProviderSet{}, ProviderSet)
}

func TestInitializeApp_InvalidBaseURL(t *testing.T) {
	_, _, err := InitializeApp(testConfig("not a url"))
	assert.Error(t, err)
}

func TestInitializeApp_DifferentTraceIDs(t *testing.T) {
	cfg := testConfig("https://loopync.example/api")
	first, cleanup1, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup1()
	second, cleanup2, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup2()

	assert.NotEqual(t, first.TraceID, second.TraceID)
}

func TestInitializeApp_RunsAuthAgainstFakeServer(t *testing.T) {
	srv := loopynctest.NewServer(t)
	cfg := testConfig(srv.URL())

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	built, err := suites.Build([]string{suites.NameAuth}, app.SuiteOptions)
	require.NoError(t, err)
	report, err := app.Runner.Run(context.Background(), built...)
	require.NoError(t, err)

	assert.True(t, report.OK(), report.String())
	assert.Equal(t, srv.URL(), report.BaseURL)
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	app := &App{TraceID: "abc"}
	got, ok := FromContext(WithApp(context.Background(), app))
	require.True(t, ok)
	assert.Same(t, app, got)
}
