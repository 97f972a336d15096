package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation fields from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if id := DatasetIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("dataset.id", id))
	}
	if name := CollectionFromContext(ctx); name != "" {
		fields = append(fields, zap.String("collection", name))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}

	return fields
}

type (
	datasetCtxKey    struct{}
	collectionCtxKey struct{}
	requestCtxKey    struct{}
	loggerCtxKey     struct{}
)

// WithDatasetID adds the dataset being operated on to ctx.
func WithDatasetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, datasetCtxKey{}, id)
}

// DatasetIDFromContext returns the dataset id in ctx, or "".
func DatasetIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(datasetCtxKey{}).(string)
	return id
}

// WithCollection adds the collection being operated on to ctx.
func WithCollection(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, collectionCtxKey{}, name)
}

// CollectionFromContext returns the collection name in ctx, or "".
func CollectionFromContext(ctx context.Context) string {
	name, _ := ctx.Value(collectionCtxKey{}).(string)
	return name
}

// WithRequestID adds a request id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext returns the request id in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestCtxKey{}).(string)
	return id
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a nop logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
