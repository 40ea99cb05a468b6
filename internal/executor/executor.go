package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/graphplan/internal/directives"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/fieldexec"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/reqid"
	"github.com/hanpama/graphplan/internal/rules/construction"
	"github.com/hanpama/graphplan/internal/rules/validation"
	"github.com/hanpama/graphplan/internal/schema"
)

// Options configure an Executor.
type Options struct {
	// PlanCacheSize is the number of compiled plans kept. Zero disables the
	// cache.
	PlanCacheSize int
	// MaxQueryDepth rejects operations nesting fields deeper than this. Zero
	// means no limit.
	MaxQueryDepth  int
	MaxConcurrency int
	Metrics        execution.Metrics
	// Debug includes the text of unhandled errors in responses.
	Debug bool
}

// Request is one GraphQL request.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
	// Root is the source value of the root fields.
	Root any
}

type Executor struct {
	schema    *schema.Schema
	engine    *fieldexec.Engine
	generator *plan.Generator
	cache     *plan.Cache
	debug     bool
}

// New initializes the schema, applying its schema generation directives,
// and returns an executor for it. A schema that fails to initialize is
// reported here rather than on the first request.
func New(ctx context.Context, s *schema.Schema, opts Options) (*Executor, error) {
	if err := directives.Initialize(ctx, s); err != nil {
		return nil, err
	}
	e := &Executor{
		schema:    s,
		engine:    fieldexec.New(ctx, s, fieldexec.Options{Metrics: opts.Metrics, MaxConcurrency: opts.MaxConcurrency}),
		generator: plan.NewGenerator(opts.MaxQueryDepth),
		debug:     opts.Debug,
	}
	if opts.PlanCacheSize > 0 {
		cache, err := plan.NewCache(opts.PlanCacheSize)
		if err != nil {
			return nil, fmt.Errorf("plan cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Prepare compiles query into the plan of the named operation. Plans of
// valid documents are cached. The error is non-nil only for syntax errors;
// validation failures are reported in the plan's messages.
func (e *Executor) Prepare(ctx context.Context, query, operationName string) (*plan.Plan, error) {
	if e.cache != nil {
		if p, ok := e.cache.Get(ctx, query, operationName); ok {
			return p, nil
		}
	}
	doc, err := construction.BuildQuery(e.schema, query)
	if err != nil {
		return nil, err
	}
	if !validation.Validate(doc) {
		return &plan.Plan{OperationName: operationName, Messages: doc.Messages, Document: doc}, nil
	}
	p := e.generator.Generate(ctx, doc, operationName)
	if e.cache != nil {
		e.cache.Add(ctx, query, operationName, p)
	}
	return p, nil
}

// Execute runs one request. It never panics on request data: syntax,
// validation, variable and field errors are all returned in the result.
func (e *Executor) Execute(ctx context.Context, r Request) *ExecutionResult {
	ctx, id := reqid.NewContext(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.RequestReceived{RequestID: id, OperationName: r.OperationName, Query: r.Query})

	res, opType, err := e.execute(ctx, id, r)

	eventbus.Publish(ctx, events.RequestCompleted{
		RequestID:     id,
		OperationName: r.OperationName,
		OperationType: opType,
		Errors:        len(res.Errors),
		Err:           err,
		Duration:      time.Since(start),
	})
	return res
}

func (e *Executor) execute(ctx context.Context, id string, r Request) (*ExecutionResult, string, error) {
	p, err := e.Prepare(ctx, r.Query, r.OperationName)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{syntaxError(err)}}, "", err
	}
	if !p.IsSuccessful() {
		return &ExecutionResult{Errors: fromMessages(p.Messages.All())}, p.OperationType, nil
	}

	vars, err := p.CoerceVariables(r.Variables)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{
			Message:    err.Error(),
			Extensions: map[string]any{"code": messages.CodeBadRequest},
		}}}, p.OperationType, err
	}

	req := execution.NewOperationRequest(id, e.schema, p, vars, r.Root)
	req.Debug = e.debug
	data, err := e.engine.ExecuteOperation(ctx, req)
	res := &ExecutionResult{Errors: fromMessages(req.Messages.All())}
	switch {
	case err != nil:
		res.Errors = append(res.Errors, e.fatalError(err))
		return res, p.OperationType, err
	case ctx.Err() != nil:
		res.Errors = append(res.Errors, GraphQLError{Message: "The request was cancelled.", Extensions: map[string]any{"code": "CANCELLED"}})
		return res, p.OperationType, ctx.Err()
	}
	res.Data = execution.Finalize(data)
	return res, p.OperationType, nil
}

// fatalError converts an error that aborted execution. Its text is kept
// only in debug mode.
func (e *Executor) fatalError(err error) GraphQLError {
	out := GraphQLError{
		Message:    "An unhandled error occurred while executing the request.",
		Extensions: map[string]any{"code": messages.CodeUnhandledError},
	}
	var execErr *execution.ExecutionError
	if errors.As(err, &execErr) {
		out.Message = fmt.Sprintf("An unhandled error occurred while resolving field %s.", execErr.Field)
		out.Extensions["field"] = execErr.Field
	}
	if e.debug {
		out.Extensions["exception"] = err.Error()
	}
	return out
}

func syntaxError(err error) GraphQLError {
	out := GraphQLError{Message: err.Error(), Extensions: map[string]any{"code": messages.CodeSyntaxError}}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		out.Message = gqlErr.Message
		for _, l := range gqlErr.Locations {
			out.Locations = append(out.Locations, messages.Location{Line: l.Line, Column: l.Column})
		}
	}
	return out
}
