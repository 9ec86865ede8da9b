package help

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/command"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/testutil"
)

type fakeHandler struct{ name string }

func (h *fakeHandler) Name() string                                      { return h.name }
func (h *fakeHandler) Description() string                               { return "тестовая команда " + h.name }
func (h *fakeHandler) Execute(_ context.Context, _ *config.Config) error { return nil }

func TestMain(m *testing.M) {
	if err := RegisterCmd(); err != nil {
		panic(err)
	}
	if err := command.Register(&fakeHandler{name: "zz-fake"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func execute(t *testing.T) string {
	t.Helper()
	var execErr error
	out := testutil.CaptureStdout(t, func() {
		execErr = (&Handler{}).Execute(context.Background(), nil)
	})
	require.NoError(t, execErr)
	return out
}

func TestHandler_Name(t *testing.T) {
	h := &Handler{}
	assert.Equal(t, constants.ActHelp, h.Name())
	assert.NotEmpty(t, h.Description())
}

func TestHandler_TextOutput(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "text")

	out := execute(t)

	assert.Contains(t, out, "loopcheck — проверка работоспособности")
	assert.Contains(t, out, "Команды:")
	assert.Contains(t, out, "zz-fake")
	assert.Contains(t, out, "тестовая команда zz-fake")
	assert.Contains(t, out, "auth, friends")
	assert.Contains(t, out, "BR_OUTPUT_FORMAT=json")
	assert.Less(t, strings.Index(out, "help "), strings.Index(out, "zz-fake"), "команды отсортированы")
}

func TestHandler_JSONOutput(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")

	out := execute(t)

	var result struct {
		output.Result
		Data Data `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, output.StatusSuccess, result.Status)
	assert.Equal(t, constants.ActHelp, result.Command)
	require.Len(t, result.Data.Commands, 2)
	assert.Equal(t, "help", result.Data.Commands[0].Name)
	assert.Equal(t, "zz-fake", result.Data.Commands[1].Name)
	assert.Len(t, result.Data.Suites, 8)
	require.NotNil(t, result.Metadata)
	assert.NotEmpty(t, result.Metadata.TraceID)
}

func TestHandler_PlanOnly(t *testing.T) {
	t.Setenv(constants.EnvPlanOnly, "true")
	t.Setenv(constants.EnvDryRun, "")

	out := execute(t)

	assert.Contains(t, out, "не поддерживает отображение плана")
}
