package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

func TestSetup_EmptyEndpointDisablesTracing(t *testing.T) {
	shutdown, err := Setup("", "graphplan")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSubscriber_Spans(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	sub := &subscriber{tracer: tp.Tracer("test")}
	unsubscribe := sub.register()
	defer unsubscribe()

	ctx := context.Background()
	eventbus.Publish(ctx, events.RequestReceived{RequestID: "r1", OperationName: "Hello"})
	eventbus.Publish(ctx, events.FieldResolutionStarted{RequestID: "r1", FieldID: "f1", Field: "Query.hello", Path: "hello"})
	eventbus.Publish(ctx, events.DirectiveApplied{RequestID: "r1", Directive: "upper", Phase: "AfterFieldResolution"})
	eventbus.Publish(ctx, events.FieldResolutionCompleted{RequestID: "r1", FieldID: "f1", Success: true})
	eventbus.Publish(ctx, events.RequestCompleted{RequestID: "r1", OperationType: "query"})

	ended := rec.Ended()
	require.Len(t, ended, 2)
	field, request := ended[0], ended[1]
	require.Equal(t, "graphql.field", field.Name())
	require.Equal(t, "graphql.request", request.Name())
	require.Equal(t, request.SpanContext().SpanID(), field.Parent().SpanID())
	require.Len(t, request.Events(), 1)
	require.Equal(t, "graphql.directive", request.Events()[0].Name)

	// completion without a start is ignored
	eventbus.Publish(ctx, events.FieldResolutionCompleted{FieldID: "unknown"})
	require.Len(t, rec.Ended(), 2)
}
