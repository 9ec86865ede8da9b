package version

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/testutil"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

func execute(t *testing.T, ctx context.Context) string {
	t.Helper()
	var execErr error
	out := testutil.CaptureStdout(t, func() {
		execErr = (&VersionHandler{}).Execute(ctx, nil)
	})
	require.NoError(t, execErr)
	return out
}

func TestVersionHandler_Name(t *testing.T) {
	h := &VersionHandler{}
	assert.Equal(t, "version", h.Name())
	assert.NotEmpty(t, h.Description())
}

func TestVersionHandler_Execute_TextOutput(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "text")

	out := execute(t, context.Background())

	assert.Contains(t, out, "loopcheck version ")
	assert.Contains(t, out, "Go:     "+runtime.Version())
	assert.Contains(t, out, "Commit: ")
	assert.NotContains(t, out, "trace_id")
}

func TestVersionHandler_Execute_JSONOutput(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")
	ctx := tracing.WithTraceID(context.Background(), "0123456789abcdef0123456789abcdef")

	out := execute(t, ctx)

	var result output.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, output.StatusSuccess, result.Status)
	assert.Equal(t, "version", result.Command)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", result.Metadata.TraceID)
	assert.Equal(t, constants.APIVersion, result.Metadata.APIVersion)

	dataMap, ok := result.Data.(map[string]any)
	require.True(t, ok, "Data должен быть map")
	assert.Equal(t, runtime.Version(), dataMap["go_version"])
	assert.NotEmpty(t, dataMap["version"])
	assert.NotEmpty(t, dataMap["commit"])
}

// Сравниваются поля и типы, значения динамические.
func TestVersionHandler_GoldenJSON(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")

	var actual map[string]any
	require.NoError(t, json.Unmarshal([]byte(execute(t, context.Background())), &actual))

	goldenData, err := os.ReadFile("testdata/version_json_output.golden")
	require.NoError(t, err)
	var golden map[string]any
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	assertSameKeys(t, golden, actual, "")
	for _, section := range []string{"data", "metadata"} {
		g, ok := golden[section].(map[string]any)
		require.True(t, ok)
		a, ok := actual[section].(map[string]any)
		require.True(t, ok, "%s должен быть объектом", section)
		assertSameKeys(t, g, a, section+".")
	}
}

func assertSameKeys(t *testing.T, golden, actual map[string]any, prefix string) {
	t.Helper()
	for key, val := range golden {
		require.Contains(t, actual, key, "нет поля %s%s", prefix, key)
		assert.IsType(t, val, actual[key], "тип поля %s%s", prefix, key)
	}
	for key := range actual {
		assert.Contains(t, golden, key, "неожиданное поле %s%s", prefix, key)
	}
}

// stdout содержит ровно один JSON объект, без логов.
func TestVersionHandler_StdoutOnlyJSON(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")

	out := execute(t, context.Background())

	decoder := json.NewDecoder(bytes.NewReader([]byte(out)))
	var result output.Result
	require.NoError(t, decoder.Decode(&result))
	var remaining bytes.Buffer
	_, _ = remaining.ReadFrom(decoder.Buffered())
	assert.Empty(t, bytes.TrimSpace(remaining.Bytes()))
}

func TestVersionHandler_PlanOnly(t *testing.T) {
	t.Setenv(constants.EnvPlanOnly, "true")
	t.Setenv(constants.EnvDryRun, "")

	out := execute(t, context.Background())

	assert.Contains(t, out, "не поддерживает отображение плана")
}

func TestBuildVersionData_Fallbacks(t *testing.T) {
	d := buildVersionData("", "")
	assert.Equal(t, "dev", d.Version)
	assert.Equal(t, "unknown", d.Commit)

	d = buildVersionData("1.2.0", "abc123")
	assert.Equal(t, "1.2.0", d.Version)
	assert.Equal(t, "abc123", d.Commit)
	assert.Equal(t, constants.APIVersion, d.APIVersion)
}
