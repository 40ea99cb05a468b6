// Package fieldexec runs the fields of a query plan through the field
// middleware pipeline. Sibling fields run concurrently; the directives of one
// field run one after another.
package fieldexec

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/graphplan/internal/directives"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/schema"
)

// Options configure an Engine.
type Options struct {
	// Metrics receives field and directive timings. Nil disables them.
	Metrics execution.Metrics
	// MaxConcurrency bounds the sibling fields resolved at once per selection
	// set. Zero means no bound.
	MaxConcurrency int
}

// Engine executes query plans against one schema.
type Engine struct {
	schema     *schema.Schema
	pipeline   *pipeline.Pipeline[*execution.FieldContext]
	directives *directives.FieldDirectiveRunner
	batch      BatchResultProcessor
	metrics    execution.Metrics
	limit      int
}

// New builds the engine and its field pipeline:
//
//	ValidateFieldExecution -> AuthorizeField -> InvokeFieldResolver -> ProcessChildFields
func New(ctx context.Context, s *schema.Schema, opts Options) *Engine {
	e := &Engine{
		schema:  s,
		metrics: opts.Metrics,
		limit:   opts.MaxConcurrency,
	}
	e.directives = directives.NewFieldDirectiveRunner(s, directives.NewPipeline(ctx), opts.Metrics)
	e.pipeline = pipeline.NewBuilder[*execution.FieldContext]("field").
		UseFunc("ValidateFieldExecution", ValidateFieldExecution).
		UseFunc("AuthorizeField", AuthorizeField).
		UseFunc("InvokeFieldResolver", e.InvokeFieldResolver).
		UseFunc("ProcessChildFields", e.ProcessChildFields).
		Build(ctx)
	return e
}

// Pipeline returns the composed field pipeline.
func (e *Engine) Pipeline() *pipeline.Pipeline[*execution.FieldContext] { return e.pipeline }

// ExecuteOperation resolves the root fields of the request's plan and
// returns the response object. The returned error is a fatal execution
// failure; field errors are recorded in req.Messages.
func (e *Engine) ExecuteOperation(ctx context.Context, req *execution.OperationRequest) (*execution.ResponseMap, error) {
	data := execution.NewResponseMap()
	root, ok, err := e.operationDirectives(ctx, req)
	if err != nil || !ok {
		return data, err
	}
	parent := parentValue{value: root, object: data}
	fields := req.Plan.Fields
	for _, inv := range fields {
		data.Declare(inv.ResponseName, inv.Field.Type.IsNonNull())
	}
	serial := req.Plan.OperationType == "mutation"
	err = e.executeAll(ctx, e.contexts(req, fields, []parentValue{parent}), serial)
	return data, err
}

// operationDirectives runs the before-resolution directives of the
// operation against the root value. ok is false when a directive cancelled
// or failed the operation.
func (e *Engine) operationDirectives(ctx context.Context, req *execution.OperationRequest) (root any, ok bool, err error) {
	var requests []*schema.DirectiveRequest
	for _, d := range req.Plan.Directives {
		if d.Directive == nil || !d.Directive.Phases.Has(schema.PhaseBeforeFieldResolution) {
			continue
		}
		args, err := d.ArgumentValues(req.Variables)
		if err != nil {
			req.Messages.Critical(messages.CodeInvalidDirective, err.Error(), err)
			return nil, false, nil
		}
		requests = append(requests, schema.NewDirectiveRequest(d.Directive, d.Location, schema.PhaseBeforeFieldResolution, args, req.Root, d.Origin))
	}
	if len(requests) == 0 {
		return req.Root, true, nil
	}
	out, err := e.directives.Run(ctx, req.ID, requests, req.Root)
	if err != nil {
		return nil, false, err
	}
	req.Messages.AddRange(out.Messages)
	return out.Target, out.IsSuccessful(), nil
}

// Execute runs one field context through the pipeline. Cancelled items are
// removed from the response and the field's messages are added to the
// request.
func (e *Engine) Execute(ctx context.Context, c *execution.FieldContext) error {
	inv := c.Invocation
	c.Start()
	eventbus.Publish(ctx, events.FieldResolutionStarted{
		RequestID: c.Request.ID,
		FieldID:   c.ID,
		Path:      c.Path(),
		Field:     inv.String(),
		Mode:      inv.Field.Mode.String(),
		Items:     c.Items.Len(),
	})

	err := e.pipeline.Invoke(ctx, c)
	if ctx.Err() != nil {
		c.Cancel()
	}
	for _, item := range c.Items.Items() {
		if item.Status() == execution.ItemCancelled && item.Target() != nil {
			item.Target().Omit(inv.ResponseName)
		}
	}
	c.Request.Messages.AddRange(c.Messages)

	eventbus.Publish(ctx, events.FieldResolutionCompleted{
		RequestID: c.Request.ID,
		FieldID:   c.ID,
		Path:      c.Path(),
		Field:     inv.String(),
		Cancelled: c.IsCancelled(),
		Success:   err == nil && c.IsSuccessful(),
		Err:       err,
		Duration:  c.Elapsed(),
	})
	return err
}

// parentValue is a completed object whose child fields are still to run.
type parentValue struct {
	path   []any
	value  any
	object *execution.ResponseMap
}

// contexts builds the field contexts resolving fields for every parent.
// Batch fields get one context holding all parents; other fields get one
// context per parent.
func (e *Engine) contexts(req *execution.OperationRequest, fields []*plan.FieldInvocation, parents []parentValue) []*execution.FieldContext {
	var contexts []*execution.FieldContext
	for _, inv := range fields {
		items := make([]*execution.SourceItem, len(parents))
		for i, p := range parents {
			items[i] = execution.NewSourceItem(execution.AppendPath(p.path, inv.ResponseName), p.value, p.object)
		}
		if inv.Field.Mode == schema.Batch {
			contexts = append(contexts, execution.NewFieldContext(req, inv, execution.NewDataContainer(items...)))
			continue
		}
		for _, item := range items {
			contexts = append(contexts, execution.NewFieldContext(req, inv, execution.NewDataContainer(item)))
		}
	}
	return contexts
}

// executeAll runs contexts concurrently, or one after another when serial
// is set. The first fatal error cancels the rest.
func (e *Engine) executeAll(ctx context.Context, contexts []*execution.FieldContext, serial bool) error {
	if serial {
		for _, c := range contexts {
			if err := e.Execute(ctx, c); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for _, c := range contexts {
		c := c
		g.Go(func() error { return e.Execute(gctx, c) })
	}
	return g.Wait()
}
