package tracing

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// Тесты модифицируют глобальный TracerProvider, t.Parallel() не использовать.

func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	})
	return exporter
}

func attrs(s tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Enabled: true, Endpoint: "http://jaeger:4318", ServiceName: "loopcheck", Timeout: time.Second, SamplingRate: 0.5}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "корректная", mutate: func(*Config) {}},
		{name: "выключен", mutate: func(c *Config) { *c = Config{} }},
		{name: "нет endpoint", mutate: func(c *Config) { c.Endpoint = "" }, wantErr: ErrTracingEndpointRequired},
		{name: "endpoint без хоста", mutate: func(c *Config) { c.Endpoint = "jaeger" }, wantErr: ErrTracingEndpointInvalidFormat},
		{name: "нет service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: ErrTracingServiceNameRequired},
		{name: "нулевой таймаут", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: ErrTracingTimeoutInvalid},
		{name: "sampling > 1", mutate: func(c *Config) { c.SamplingRate = 1.5 }, wantErr: ErrTracingSamplingRateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	shutdown, err := NewTracerProvider(DefaultConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTracerProvider_InvalidConfig(t *testing.T) {
	_, err := NewTracerProvider(Config{Enabled: true}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrTracingEndpointRequired)
}

func TestGenerateTraceID(t *testing.T) {
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateTraceID()
		require.Regexp(t, hex32, id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
	assert.Regexp(t, hex32, fallbackTraceID())
}

func TestTraceIDContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.Empty(t, TraceIDFromContext(nil)) //nolint:staticcheck // проверка nil контекста

	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))

	same, id := EnsureTraceID(ctx)
	assert.Equal(t, "abc", id)
	assert.Equal(t, ctx, same)

	fresh, id := EnsureTraceID(context.Background())
	assert.Len(t, id, 32)
	assert.Equal(t, id, TraceIDFromContext(fresh))
}

func TestContextWithOTelTraceID(t *testing.T) {
	exporter := installRecorder(t)
	id := GenerateTraceID()

	ctx := ContextWithOTelTraceID(context.Background(), id)
	_, span := Tracer().Start(ctx, "run")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, id, spans[0].SpanContext.TraceID().String())

	bad := ContextWithOTelTraceID(context.Background(), "not-hex")
	assert.False(t, trace.SpanContextFromContext(bad).IsValid())
}

func TestStepSpans(t *testing.T) {
	exporter := installRecorder(t)

	ctx, step := StartStep(context.Background(), "dm", "send-message")
	_, req := StartHTTP(ctx, "POST", "/dm/threads/t1/messages")
	EndHTTP(req, 200, nil)
	EndStep(step, "pass", "")

	_, failed := StartStep(context.Background(), "calls", "initiate")
	EndStep(failed, "fail", "403 You can only call friends")

	_, broken := StartHTTP(context.Background(), "GET", "/posts")
	EndHTTP(broken, 0, errors.New("connection reset"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	assert.Equal(t, "POST /dm/threads/t1/messages", spans[0].Name)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.EqualValues(t, 200, attrs(spans[0])["http.response.status_code"])
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())

	assert.Equal(t, "dm/send-message", spans[1].Name)
	assert.Equal(t, "pass", attrs(spans[1])["loopcheck.status"])
	assert.Equal(t, codes.Unset, spans[1].Status.Code)

	assert.Equal(t, codes.Error, spans[2].Status.Code)
	assert.Equal(t, "403 You can only call friends", spans[2].Status.Description)

	assert.Equal(t, codes.Error, spans[3].Status.Code)
	assert.Len(t, spans[3].Events, 1)
}
