// Package opsyotel traces opsy operations with OpenTelemetry. Each call that
// passes validation runs inside a span named after its operation.
package opsyotel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skosovsky/opsy"
)

// ScopeName is the instrumentation scope of the spans.
const ScopeName = "github.com/skosovsky/opsy/ext/opsyotel"

// Span attribute keys.
const (
	AttrOperation   = attribute.Key("opsy.operation")
	AttrDangerous   = attribute.Key("opsy.operation.dangerous")
	AttrTags        = attribute.Key("opsy.operation.tags")
	AttrClientError = attribute.Key("opsy.error.client")
)

// Middleware returns an opsy middleware that wraps each handler call in a span.
// A nil provider uses the global one (otel.GetTracerProvider).
func Middleware[C any](tp trace.TracerProvider) opsy.Middleware[C] {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(ScopeName)
	return func(op opsy.OperationInfo, next opsy.Handler[C]) opsy.Handler[C] {
		attrs := []attribute.KeyValue{
			AttrOperation.String(op.Name()),
			AttrDangerous.Bool(op.IsDangerous()),
		}
		if tags := op.Tags(); len(tags) > 0 {
			attrs = append(attrs, AttrTags.StringSlice(tags))
		}
		name := "opsy " + op.Name()

		return func(ctx context.Context, client C, args opsy.Values) (any, error) {
			ctx, span := tracer.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...))
			defer span.End()

			res, err := next(ctx, client, args)
			if err != nil {
				span.RecordError(err)
				span.SetAttributes(AttrClientError.Bool(opsy.IsClientError(err)))
				span.SetStatus(codes.Error, err.Error())
				return res, err
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		}
	}
}
