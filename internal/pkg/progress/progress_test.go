package progress

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressInterface(_ *testing.T) {
	var _ Progress = &LineProgress{}
	var _ Progress = &JSONProgress{}
	var _ Progress = &NoopProgress{}
}

func TestIsTTY(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTTY(&buf))
	assert.False(t, IsTTY(nil))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: -time.Second, want: "0ms"},
		{in: 850 * time.Millisecond, want: "850ms"},
		{in: 4200 * time.Millisecond, want: "4.2s"},
		{in: 2 * time.Minute, want: "2m"},
		{in: 65 * time.Second, want: "1m 5s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		show     string
		format   string
		stream   string
		wantType any
	}{
		{name: "отключён", show: "false", wantType: &NoopProgress{}},
		{name: "текст", wantType: &LineProgress{}},
		{name: "json без потока", format: "json", wantType: &NoopProgress{}},
		{name: "json поток", format: "JSON", stream: "true", wantType: &JSONProgress{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BR_SHOW_PROGRESS", tt.show)
			t.Setenv("BR_OUTPUT_FORMAT", tt.format)
			t.Setenv("BR_PROGRESS_STREAM", tt.stream)

			assert.IsType(t, tt.wantType, New(Options{Output: &bytes.Buffer{}}))
		})
	}
}

func TestLineProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewLineProgress(Options{Output: &buf})

	p.Start(12, "smoke")
	p.Step(StepEvent{Index: 1, Suite: "auth", Step: "login", Status: StatusPass, Duration: 120 * time.Millisecond})
	p.Step(StepEvent{Index: 2, Suite: "dm", Step: "open-thread", Status: StatusFail, Message: "403 Must be friends"})
	p.Step(StepEvent{Index: 3, Suite: "calls", Step: "agora-token", Status: StatusSkip, Message: "agora не настроен"})
	p.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "▶ smoke (12 шагов)", lines[0])
	assert.Equal(t, "✅ PASS [ 1/12] auth/login (120ms)", lines[1])
	assert.Equal(t, "❌ FAIL [ 2/12] dm/open-thread (0ms) 403 Must be friends", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "⏭️ SKIP [ 3/12] calls/agora-token"))
	assert.True(t, strings.HasPrefix(lines[4], "■ pass=1 fail=1 skip=1"))
	assert.NotContains(t, buf.String(), ansiReset)
}

func TestLineProgress_Color(t *testing.T) {
	var buf bytes.Buffer
	p := NewLineProgress(Options{Output: &buf, Color: true})
	p.Start(1, "")
	p.Step(StepEvent{Index: 1, Suite: "auth", Step: "login", Status: StatusPass})

	assert.Contains(t, buf.String(), ansiGreen+"✅ PASS"+ansiReset)
}

func TestJSONProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewJSONProgress(Options{Output: &buf})

	p.Start(4, "smoke")
	p.Step(StepEvent{Index: 1, Suite: "auth", Step: "login", Status: StatusPass, Duration: 5 * time.Millisecond})
	p.Finish()

	var events []Event
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 3)
	assert.Equal(t, "progress_start", events[0].Type)
	assert.Equal(t, 4, events[0].Total)
	assert.Equal(t, "step", events[1].Type)
	require.NotNil(t, events[1].Percent)
	assert.Equal(t, 25, *events[1].Percent)
	assert.Equal(t, int64(5), events[1].DurationMs)
	assert.Equal(t, "progress_end", events[2].Type)
}

func TestJSONProgress_NilOutput(t *testing.T) {
	p := NewJSONProgress(Options{})
	assert.NotPanics(t, func() {
		p.Start(1, "")
		p.Step(StepEvent{Index: 1})
		p.Finish()
	})
}
