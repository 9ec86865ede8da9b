package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/adapter/loopync/loopynctest"
	"github.com/Kargones/loopcheck/internal/command/handlers"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/testutil"
)

func TestMain(m *testing.M) {
	if err := handlers.RegisterAll(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// setEnv направляет loopcheck на тестовый сервер без YAML файла.
func setEnv(t *testing.T, srv *loopynctest.Server) {
	t.Helper()
	t.Setenv(constants.EnvConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv(constants.EnvOutputFormat, "json")
	t.Setenv("BR_SHOW_PROGRESS", "false")
	t.Setenv("BR_LOG_LEVEL", "error")
	t.Setenv("LOOPCHECK_RATE_LIMIT", "100")
	t.Setenv("LOOPCHECK_RATE_BURST", "100")
	if srv != nil {
		t.Setenv("LOOPCHECK_BASE_URL", srv.URL())
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stderr bytes.Buffer
	var code int
	out := testutil.CaptureStdout(t, func() {
		code = run(append([]string{constants.AppName}, args...), &stderr)
	})
	return code, out, stderr.String()
}

func TestRun_Version(t *testing.T) {
	setEnv(t, nil)

	code, out, _ := runCLI(t, "version")

	assert.Equal(t, constants.ExitOK, code)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "version", result["command"])
}

func TestRun_NoCommandShowsHelp(t *testing.T) {
	setEnv(t, nil)
	t.Setenv(constants.EnvOutputFormat, "text")

	code, out, _ := runCLI(t)

	assert.Equal(t, constants.ExitOK, code)
	assert.Contains(t, out, "Команды:")
	assert.Contains(t, out, "monitor")
}

func TestRun_UnknownCommand(t *testing.T) {
	setEnv(t, nil)

	code, _, stderr := runCLI(t, "deploy")

	assert.Equal(t, constants.ExitCommandFail, code)
	assert.Contains(t, stderr, "Неизвестная команда: deploy")
}

func TestRun_SuitePasses(t *testing.T) {
	srv := loopynctest.NewServer(t)
	setEnv(t, srv)

	code, out, stderr := runCLI(t, "run", "--suite", "venues")

	require.Equal(t, constants.ExitOK, code, stderr)
	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 1, srv.Hits("GET /api/venues"))
}

func TestRun_FailedChecksExitCode(t *testing.T) {
	srv := loopynctest.NewServer(t)
	setEnv(t, srv)
	t.Setenv("LOOPCHECK_DEMO_PASSWORD", "wrong-password")

	code, out, _ := runCLI(t, "run", "-s", "auth")

	assert.Equal(t, constants.ExitChecksFail, code)
	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "failed", result.Status)
}

func TestRun_InvalidBaseURLFlag(t *testing.T) {
	setEnv(t, nil)

	code, _, stderr := runCLI(t, "run", "--base-url", "ftp://loopync.example")

	assert.Equal(t, constants.ExitConfigError, code)
	assert.Contains(t, stderr, "Некорректные параметры запуска")
}
