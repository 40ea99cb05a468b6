package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

func TestSetup_WritesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	unsubscribe := Setup(zap.New(core))

	ctx := context.Background()
	eventbus.Publish(ctx, events.RequestCompleted{RequestID: "r1", OperationType: "query", Errors: 2})
	eventbus.Publish(ctx, events.ActionUnhandledException{Field: "Query.explode", Path: "explode", Err: errors.New("kaboom")})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, "request completed", entries[0].Message)
	require.Equal(t, "r1", entries[0].ContextMap()["request_id"])
	require.Equal(t, int64(2), entries[0].ContextMap()["errors"])
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "kaboom", entries[1].ContextMap()["error"])

	unsubscribe()
	eventbus.Publish(ctx, events.PlanCacheHit{Key: 1})
	require.Equal(t, 2, logs.Len())
}

func TestSetup_NilLogger(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	unsubscribe := Setup(nil)
	defer unsubscribe()
	eventbus.Publish(context.Background(), events.SchemaInstanceCreated{Err: errors.New("broken")})
}

func TestNew(t *testing.T) {
	log, err := New("warn", false)
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud", true)
	require.Error(t, err)
}
