package output

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(filepath.Join("testdata", "schema", "result.schema.json"))
	require.NoError(t, err, "не удалось загрузить JSON Schema")
	return schema
}

func validate(t *testing.T, schema *jsonschema.Schema, raw []byte) {
	t.Helper()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	require.NoError(t, err)
	require.NoError(t, schema.Validate(doc))
}

func TestJSONWriter_SummaryMovesToMetadata(t *testing.T) {
	summary := NewSummaryInfo()
	summary.AddCount("Шагов", 12, "шт")
	summary.AddWarning("realtime пропущен")

	result := &Result{
		Status:   StatusFailed,
		Command:  "run",
		Data:     map[string]int{"failed": 1},
		Metadata: &Metadata{DurationMs: 1200, TraceID: "abc", RunID: "r1", APIVersion: "v1"},
		Summary:  summary,
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))
	validate(t, loadSchema(t), buf.Bytes())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	meta := decoded["metadata"].(map[string]any)
	s := meta["summary"].(map[string]any)
	assert.EqualValues(t, 1, s["warnings_count"])

	assert.Nil(t, result.Metadata.Summary, "входной result не должен изменяться")
}

func TestJSONWriter_ErrorResult(t *testing.T) {
	result := &Result{
		Status:   StatusError,
		Command:  "history",
		Error:    &ErrorInfo{Code: "HISTORY.DISABLED", Message: "история отключена"},
		Metadata: &Metadata{APIVersion: "v1"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, result))
	validate(t, loadSchema(t), buf.Bytes())
	assert.Contains(t, buf.String(), `"code": "HISTORY.DISABLED"`)
}

func TestJSONWriter_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter().Write(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestWritePlan_JSON(t *testing.T) {
	plan := &DryRunPlan{
		Command:          "run",
		ValidationPassed: true,
		Steps: []PlanStep{
			{Order: 1, Suite: "auth", Operation: "login"},
			{Order: 2, Suite: "dm", Operation: "open-thread", Requires: []string{"token", "peer_user_id"}},
		},
	}

	for _, planOnly := range []bool{false, true} {
		var buf bytes.Buffer
		err := WritePlan(&buf, PlanResult{
			Format: FormatJSON, Command: "run", APIVersion: "v1",
			Start: time.Now(), Plan: plan, PlanOnly: planOnly,
		})
		require.NoError(t, err)
		validate(t, loadSchema(t), buf.Bytes())

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		if planOnly {
			assert.Equal(t, true, decoded["plan_only"])
			assert.NotContains(t, decoded, "dry_run")
		} else {
			assert.Equal(t, true, decoded["dry_run"])
			assert.NotContains(t, decoded, "plan_only")
		}
	}
}

func TestNewWriter(t *testing.T) {
	assert.IsType(t, &JSONWriter{}, NewWriter("JSON"))
	assert.IsType(t, &TextWriter{}, NewWriter("text"))
	assert.IsType(t, &TextWriter{}, NewWriter("yaml"))
	assert.True(t, IsJSON("Json"))
	assert.False(t, IsJSON(""))
}
