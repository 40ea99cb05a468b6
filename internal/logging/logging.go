// Package logging writes engine events to a zap logger.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

// New builds a zap logger for the given level.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Setup subscribes log to every engine event on the installed bus and
// returns a function removing the subscriptions. A nil logger discards
// everything.
func Setup(log *zap.Logger) func() {
	if log == nil {
		log = zap.NewNop()
	}
	subs := []func(){
		eventbus.Subscribe(func(_ context.Context, e events.SchemaInstanceCreated) {
			if e.Err != nil {
				log.Error("schema initialization failed", zap.Error(e.Err))
				return
			}
			log.Info("schema initialized", zap.String("query_type", e.QueryType), zap.Int("types", e.Types))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.PipelineRegistered) {
			log.Debug("pipeline registered", zap.String("pipeline", e.Name), zap.Strings("middleware", e.Middleware))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.DirectiveApplied) {
			fields := []zap.Field{
				zap.String("request_id", e.RequestID),
				zap.String("directive", e.Directive),
				zap.String("phase", e.Phase),
				zap.String("location", e.Location),
				zap.String("origin", e.Origin),
				zap.Duration("duration", e.Duration),
			}
			if e.Err != nil {
				log.Warn("directive failed", append(fields, zap.Error(e.Err))...)
				return
			}
			log.Debug("directive applied", fields...)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.RequestReceived) {
			log.Debug("request received", zap.String("request_id", e.RequestID), zap.String("operation", e.OperationName))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.RequestCompleted) {
			fields := []zap.Field{
				zap.String("request_id", e.RequestID),
				zap.String("operation", e.OperationName),
				zap.String("operation_type", e.OperationType),
				zap.Int("errors", e.Errors),
				zap.Duration("duration", e.Duration),
			}
			if e.Err != nil {
				log.Warn("request failed", append(fields, zap.Error(e.Err))...)
				return
			}
			log.Info("request completed", fields...)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.PlanCacheHit) {
			log.Debug("plan cache hit", zap.Uint64("key", e.Key), zap.String("operation", e.OperationName))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.PlanCacheMiss) {
			log.Debug("plan cache miss", zap.Uint64("key", e.Key), zap.String("operation", e.OperationName))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.PlanCached) {
			log.Debug("plan cached", zap.Uint64("key", e.Key), zap.String("operation", e.OperationName))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.PlanGenerated) {
			log.Debug("plan generated",
				zap.String("operation", e.OperationName),
				zap.String("operation_type", e.OperationType),
				zap.Int("fields", e.Fields),
				zap.Int("messages", e.Messages),
				zap.Duration("duration", e.Duration))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FieldResolutionStarted) {
			log.Debug("field resolution started",
				zap.String("request_id", e.RequestID),
				zap.String("field_id", e.FieldID),
				zap.String("field", e.Field),
				zap.String("path", e.Path),
				zap.String("mode", e.Mode),
				zap.Int("items", e.Items))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FieldResolutionCompleted) {
			log.Debug("field resolution completed",
				zap.String("request_id", e.RequestID),
				zap.String("field_id", e.FieldID),
				zap.String("path", e.Path),
				zap.Bool("cancelled", e.Cancelled),
				zap.Bool("success", e.Success),
				zap.Duration("duration", e.Duration),
				zap.Error(e.Err))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.FieldAuthorizationCompleted) {
			if !e.Authorized {
				log.Info("field access denied", zap.String("field_id", e.FieldID), zap.String("path", e.Path), zap.Error(e.Err))
			}
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ActionInvocationStarted) {
			log.Debug("action invoked", zap.String("action", e.Action), zap.String("field", e.Field))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ActionModelValidated) {
			if !e.Valid {
				log.Info("action arguments rejected", zap.String("action", e.Action), zap.String("field", e.Field), zap.Error(e.Err))
			}
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ActionInvocationCompleted) {
			log.Debug("action completed",
				zap.String("action", e.Action),
				zap.String("field", e.Field),
				zap.String("result", e.Result),
				zap.Duration("duration", e.Duration))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ActionInvocationException) {
			log.Warn("action returned an error", zap.String("action", e.Action), zap.String("field", e.Field), zap.Error(e.Err))
		}),
		eventbus.Subscribe(func(_ context.Context, e events.ActionUnhandledException) {
			log.Error("unhandled exception", zap.String("field", e.Field), zap.String("path", e.Path), zap.Error(e.Err))
		}),
	}
	return func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}
}
