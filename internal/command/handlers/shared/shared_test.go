package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/di"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/pkg/output"
	"github.com/Kargones/loopcheck/internal/pkg/testutil"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: constants.ExitOK},
		{name: "проверки упали", err: apperrors.NewAppError(apperrors.ErrRunFailed, "x", nil), want: constants.ExitChecksFail},
		{name: "обёрнутая", err: fmt.Errorf("run: %w", apperrors.NewAppError(apperrors.ErrRunFailed, "x", nil)), want: constants.ExitChecksFail},
		{name: "конфигурация", err: apperrors.NewAppError(apperrors.ErrConfigValidate, "x", nil), want: constants.ExitConfigError},
		{name: "история", err: apperrors.NewAppError(apperrors.ErrHistoryDisabled, "x", nil), want: constants.ExitCommandFail},
		{name: "обычная ошибка", err: errors.New("boom"), want: constants.ExitCommandFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestNewExec_UsesContextTraceID(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")
	ctx := tracing.WithTraceID(context.Background(), "0123456789abcdef0123456789abcdef")

	e := NewExec(ctx, constants.ActRun)

	assert.Equal(t, "0123456789abcdef0123456789abcdef", e.TraceID)
	assert.True(t, e.JSON())
}

func TestExec_WriteErrorJSON(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "json")
	var buf bytes.Buffer
	e := NewExec(context.Background(), constants.ActHistory)
	e.Out = &buf

	err := e.WriteError(apperrors.ErrHistoryDisabled, "история выключена", nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrHistoryDisabled, apperrors.CodeOf(err, ""))

	var result output.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, output.StatusError, result.Status)
	assert.Equal(t, constants.ActHistory, result.Command)
	require.NotNil(t, result.Error)
	assert.Equal(t, apperrors.ErrHistoryDisabled, result.Error.Code)
	assert.Equal(t, e.TraceID, result.Metadata.TraceID)
}

func TestExec_WriteErrorText(t *testing.T) {
	t.Setenv(constants.EnvOutputFormat, "")
	var err error
	out := testutil.CaptureStdout(t, func() {
		e := NewExec(context.Background(), constants.ActRun)
		err = e.WriteError(apperrors.ErrSuiteUnknown, "неизвестный набор nope", nil)
	})

	require.Error(t, err)
	assert.Contains(t, out, "Ошибка: неизвестный набор nope")
	assert.Contains(t, out, "Код: SUITE.UNKNOWN")
}

func TestResolveApp_FromContext(t *testing.T) {
	app := &di.App{TraceID: "abc"}
	got, cleanup, err := ResolveApp(di.WithApp(context.Background(), app), nil)
	require.NoError(t, err)
	defer cleanup()
	assert.Same(t, app, got)
}

func TestResolveApp_NilConfig(t *testing.T) {
	_, cleanup, err := ResolveApp(context.Background(), nil)
	defer cleanup()
	assert.Equal(t, apperrors.ErrConfigLoad, apperrors.CodeOf(err, ""))
}
