package opentelemetry

import (
	"context"

	"github.com/coderi421/mapper/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/mapper/middleware/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m *MiddlewareBuilder) Build() storage.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next storage.Handler) storage.Handler {
		return func(ctx context.Context, qc *storage.QueryContext) *storage.QueryResult {
			name := qc.Type
			if name == "" {
				name = "unknown"
			}
			ctx, span := m.Tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			span.SetAttributes(attribute.String("db.system", qc.Driver))
			span.SetAttributes(attribute.String("db.source", qc.Source))
			// 只有 SQL，参数的值不放进去
			span.SetAttributes(attribute.String("db.statement", qc.Query.SQL))

			res := next(ctx, qc)
			if res.Err != nil {
				span.RecordError(res.Err)
				span.SetStatus(codes.Error, res.Err.Error())
			}
			return res
		}
	}
}
