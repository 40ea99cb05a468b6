package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/reqid"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: tp.Tracer("graphplan")}
	unsubscribe := sub.register()

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

type subscriber struct {
	tracer       trace.Tracer
	requestSpans sync.Map // rid -> trace.Span
	fieldSpans   sync.Map // field id -> trace.Span
}

func (s *subscriber) register() func() {
	var subs []func()
	subs = append(subs, eventbus.Subscribe(func(ctx context.Context, e events.RequestReceived) {
		_, span := s.tracer.Start(ctx, "graphql.request")
		if e.OperationName != "" {
			span.SetAttributes(attribute.String("graphql.operation.name", e.OperationName))
		}
		s.requestSpans.Store(e.RequestID, span)
	}))

	subs = append(subs, eventbus.Subscribe(func(ctx context.Context, e events.RequestCompleted) {
		v, ok := s.requestSpans.LoadAndDelete(e.RequestID)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.String("graphql.operation.type", e.OperationType),
			attribute.Int("graphql.error_count", e.Errors),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End()
	}))

	subs = append(subs, eventbus.Subscribe(func(ctx context.Context, e events.FieldResolutionStarted) {
		_, span := s.tracer.Start(s.parent(ctx, e.RequestID), "graphql.field",
			trace.WithAttributes(
				attribute.String("graphql.field.name", e.Field),
				attribute.String("graphql.field.path", e.Path),
				attribute.String("graphql.field.mode", e.Mode),
				attribute.Int("graphql.field.items", e.Items),
			))
		s.fieldSpans.Store(e.FieldID, span)
	}))

	subs = append(subs, eventbus.Subscribe(func(ctx context.Context, e events.FieldResolutionCompleted) {
		v, ok := s.fieldSpans.LoadAndDelete(e.FieldID)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Bool("graphql.field.cancelled", e.Cancelled))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		if !e.Success {
			span.SetStatus(codes.Error, "field resolution failed")
		}
		span.End()
	}))

	subs = append(subs, eventbus.Subscribe(func(ctx context.Context, e events.DirectiveApplied) {
		v, ok := s.requestSpans.Load(e.RequestID)
		if !ok {
			return
		}
		attrs := []attribute.KeyValue{
			attribute.String("graphql.directive.name", e.Directive),
			attribute.String("graphql.directive.phase", e.Phase),
			attribute.String("graphql.directive.origin", e.Origin),
		}
		if e.Err != nil {
			attrs = append(attrs, attribute.String("error", e.Err.Error()))
		}
		v.(trace.Span).AddEvent("graphql.directive", trace.WithAttributes(attrs...))
	}))

	return func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}
}

func (s *subscriber) parent(ctx context.Context, rid string) context.Context {
	if rid == "" {
		rid, _ = reqid.FromContext(ctx)
	}
	if v, ok := s.requestSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}
