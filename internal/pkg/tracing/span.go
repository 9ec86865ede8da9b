package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName — имя инструментирующей библиотеки для всех спанов loopcheck.
const TracerName = "github.com/Kargones/loopcheck"

// Атрибуты спанов.
const (
	AttrSuite      = attribute.Key("loopcheck.suite")
	AttrStep       = attribute.Key("loopcheck.step")
	AttrStatus     = attribute.Key("loopcheck.status")
	AttrRunID      = attribute.Key("loopcheck.run_id")
	AttrHTTPMethod = attribute.Key("http.request.method")
	AttrHTTPPath   = attribute.Key("url.path")
	AttrHTTPStatus = attribute.Key("http.response.status_code")
)

// Tracer возвращает tracer глобального провайдера.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartStep открывает спан шага "suite/step".
func StartStep(ctx context.Context, suite, step string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, suite+"/"+step,
		trace.WithAttributes(AttrSuite.String(suite), AttrStep.String(step)))
}

// EndStep закрывает спан шага. Статус "fail" помечает спан ошибкой.
func EndStep(span trace.Span, status, message string) {
	span.SetAttributes(AttrStatus.String(status))
	if status == "fail" {
		span.SetStatus(codes.Error, message)
	}
	span.End()
}

// StartHTTP открывает клиентский спан HTTP запроса к стенду.
func StartHTTP(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrHTTPMethod.String(method), AttrHTTPPath.String(path)))
}

// EndHTTP закрывает спан HTTP запроса. err — ошибка транспорта.
func EndHTTP(span trace.Span, statusCode int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(AttrHTTPStatus.Int(statusCode))
		if statusCode >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
	span.End()
}
