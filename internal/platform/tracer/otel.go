package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "censusdesk"

// OTelTracer emits spans through an OpenTelemetry provider.
type OTelTracer struct {
	tracer trace.Tracer
}

func NewOTel(provider trace.TracerProvider) *OTelTracer {
	return &OTelTracer{tracer: provider.Tracer(instrumentationName)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(otelAttrs(attrs)...))
	return ctx, otelSpan{span}
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.Span.SetAttributes(otelAttrs(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(otelAttrs(attrs)...))
}

func otelAttrs(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		var kv attribute.KeyValue
		switch v := a.Value.(type) {
		case string:
			kv = attribute.String(a.Key, v)
		case bool:
			kv = attribute.Bool(a.Key, v)
		case int:
			kv = attribute.Int(a.Key, v)
		case int64:
			kv = attribute.Int64(a.Key, v)
		case float64:
			kv = attribute.Float64(a.Key, v)
		default:
			kv = attribute.String(a.Key, fmt.Sprint(v))
		}
		out = append(out, kv)
	}
	return out
}

var _ Tracer = (*OTelTracer)(nil)
