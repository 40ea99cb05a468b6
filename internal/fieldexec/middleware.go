package fieldexec

import (
	"context"
	"fmt"

	"github.com/hanpama/graphplan/internal/controller"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

// ValidateFieldExecution stops fields that cannot run. A context without
// items or one already cancelled ends quietly; an unknown resolution mode is
// a fatal error.
func ValidateFieldExecution(ctx context.Context, c *execution.FieldContext, next pipeline.Handler[*execution.FieldContext]) error {
	inv := c.Invocation
	if inv == nil || inv.Field == nil || inv.ParentType == nil {
		return fmt.Errorf("field context %s has no field invocation", c.ID)
	}
	switch inv.Field.Mode {
	case schema.PerSourceItem, schema.Batch:
	default:
		return execution.NewExecutionError(c, "unsupported resolution mode %s", inv.Field.Mode)
	}
	if c.Items.Len() == 0 || c.IsCancelled() {
		return nil
	}
	if ctx.Err() != nil {
		c.Cancel()
		return nil
	}
	return next(ctx, c)
}

// AuthorizeField runs the field's Authorize hook. A denial fails every item
// of the field and ends the pipeline.
func AuthorizeField(ctx context.Context, c *execution.FieldContext, next pipeline.Handler[*execution.FieldContext]) error {
	inv := c.Invocation
	if inv.Field.Authorize == nil {
		return next(ctx, c)
	}
	items := c.Items.Items()
	err := inv.Field.Authorize(schema.ResolveParams{
		Source:     items[0].Source(),
		Sources:    c.Items.Sources(),
		Field:      inv.Field,
		ParentType: inv.ParentType,
		Path:       items[0].Path(),
	})
	eventbus.Publish(ctx, events.FieldAuthorizationCompleted{
		FieldID:    c.ID,
		Path:       c.Path(),
		Authorized: err == nil,
		Err:        err,
	})
	if err == nil {
		return next(ctx, c)
	}
	for _, item := range items {
		c.Fail(item, messages.CodeUnauthorized, fmt.Sprintf("Access denied to field %s: %v", inv, err), err)
		item.Fail()
	}
	return nil
}

// InvokeFieldResolver resolves the field for its source items:
//
//  1. before-resolution directives run against the argument values,
//  2. the resolver is called once per item, or once for all items in Batch mode,
//  3. after-resolution directives run against each resolved value.
//
// Items left pending after resolution fail the completion check. Once the
// rest of the pipeline returns, resolved values are validated against the
// field type.
func (e *Engine) InvokeFieldResolver(ctx context.Context, c *execution.FieldContext, next pipeline.Handler[*execution.FieldContext]) error {
	inv := c.Invocation
	checks := newValidationContexts(c)

	if inv.Field.Mode == schema.PerSourceItem && c.Items.Len() != 1 {
		return execution.NewExecutionError(c, "field resolves per source item but was given %d items", c.Items.Len())
	}

	if e.metrics != nil {
		e.metrics.BeginFieldResolution(c)
	}
	fatal := e.resolve(ctx, c)
	if e.metrics != nil {
		e.metrics.EndFieldResolution(c)
	}
	if fatal != nil {
		c.Cancel()
		return fatal
	}
	if ctx.Err() != nil {
		c.Cancel()
	}
	if c.IsCancelled() {
		return nil
	}

	checks.apply(completionRules)
	if err := next(ctx, c); err != nil {
		return err
	}
	if ctx.Err() != nil {
		c.Cancel()
		return nil
	}
	checks.apply(validationRules)
	return nil
}

// resolve runs directives and the resolver. It returns only fatal errors.
func (e *Engine) resolve(ctx context.Context, c *execution.FieldContext) error {
	inv := c.Invocation
	requests, err := e.directiveRequests(c)
	if err != nil {
		e.failAll(c, rules.CoercingFieldArguments, err)
		return nil
	}

	args, err := inv.ArgumentValues(c.Request.Variables)
	if err != nil {
		e.failAll(c, rules.CoercingFieldArguments, err)
		return nil
	}
	if len(requests) > 0 {
		out, err := e.directives.Run(ctx, c.Request.ID, requests, args)
		if err != nil {
			return err
		}
		addMessages(c, out.Messages, c.Items.Items()[0].Path())
		switch {
		case out.Cancelled:
			c.Cancel()
			return nil
		case !out.IsSuccessful():
			failPending(c)
			return nil
		}
		replaced, ok := out.Target.(map[string]any)
		if !ok {
			e.failAll(c, rules.CoercingFieldArguments, fmt.Errorf("directives replaced the arguments of %s with %T", inv, out.Target))
			return nil
		}
		args = replaced
	}
	c.Arguments = args

	if err := e.invokeResolver(ctx, c); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}

	if len(requests) > 0 {
		e.afterResolution(ctx, c, requests)
	}
	return nil
}

func (e *Engine) invokeResolver(ctx context.Context, c *execution.FieldContext) error {
	inv := c.Invocation
	items := c.Items.Items()

	if schema.IsTypenameField(inv.Field) {
		for _, item := range items {
			item.Resolve(inv.ParentType.Name)
		}
		return nil
	}

	params := schema.ResolveParams{
		Args:       c.Arguments,
		Field:      inv.Field,
		ParentType: inv.ParentType,
		Path:       items[0].Path(),
	}
	if inv.Field.Mode == schema.Batch {
		params.Sources = c.Items.Sources()
	} else {
		params.Source = items[0].Source()
	}

	resolver := inv.Field.Resolver
	if resolver == nil {
		resolver = PropertyResolver{}
	}
	r := call(ctx, resolver, params)
	if r.panicked != nil {
		err := fmt.Errorf("resolver panicked: %v", r.panicked)
		eventbus.Publish(ctx, events.ActionUnhandledException{Field: inv.String(), Path: c.Path(), Err: err})
		return &execution.ExecutionError{Field: inv.String(), Path: c.Path(), Err: err}
	}
	if r.err != nil {
		if ctx.Err() != nil {
			c.Cancel()
			return nil
		}
		for _, item := range items {
			c.Fail(item, messages.CodeExecutionError, r.err.Error(), r.err)
			item.Fail()
		}
		return nil
	}

	if inv.Field.Mode == schema.Batch {
		return e.batch.Assign(c, r.value)
	}
	assign(c, items[0], r.value)
	return nil
}

// afterResolution runs after-resolution directives against each resolved
// value. The requests keep the ids of their before-resolution counterparts.
func (e *Engine) afterResolution(ctx context.Context, c *execution.FieldContext, requests []*schema.DirectiveRequest) {
	after := make([]*schema.DirectiveRequest, len(requests))
	for i, r := range requests {
		after[i] = r.ForPhase(schema.PhaseAfterFieldResolution, nil)
	}
	for _, item := range c.Items.Items() {
		v, ok := item.Result()
		if !ok {
			continue
		}
		out, err := e.directives.Run(ctx, c.Request.ID, after, v)
		if err != nil {
			c.Fail(item, messages.CodeInvalidDirective, err.Error(), err)
			item.Fail()
			continue
		}
		addMessages(c, out.Messages, item.Path())
		switch {
		case out.Cancelled:
			item.Cancel()
		case !out.IsSuccessful():
			item.Fail()
		default:
			item.SetResult(out.Target)
		}
	}
}

// directiveRequests builds one request per execution-time directive of the
// field, in rank order.
func (e *Engine) directiveRequests(c *execution.FieldContext) ([]*schema.DirectiveRequest, error) {
	var out []*schema.DirectiveRequest
	for _, d := range c.Invocation.Directives {
		if d.Directive == nil || d.Directive.Phases&schema.PhaseExecution == 0 {
			continue
		}
		args, err := d.ArgumentValues(c.Request.Variables)
		if err != nil {
			return nil, err
		}
		out = append(out, schema.NewDirectiveRequest(d.Directive, d.Location, schema.PhaseBeforeFieldResolution, args, nil, d.Origin))
	}
	return out, nil
}

func (e *Engine) failAll(c *execution.FieldContext, ref rules.Ref, err error) {
	for _, item := range c.Items.Items() {
		m := c.Fail(item, messages.CodeExecutionError, err.Error(), err)
		m.RuleNumber, m.RuleURL = ref.Number, ref.URL()
		item.Fail()
	}
}

// addMessages copies directive messages to the field, locating those without
// a path at path.
func addMessages(c *execution.FieldContext, from *messages.Collection, path []any) {
	for _, m := range from.All() {
		if m.Path == nil {
			m.Path = path
		}
		c.Messages.Add(m)
	}
}

func failPending(c *execution.FieldContext) {
	for _, item := range c.Items.Pending() {
		item.Fail()
	}
}

type resolution struct {
	value    any
	err      error
	panicked any
}

func call(ctx context.Context, r schema.FieldResolver, p schema.ResolveParams) (out resolution) {
	defer func() {
		if rec := recover(); rec != nil {
			out = resolution{panicked: rec}
		}
	}()
	out.value, out.err = r.Resolve(ctx, p)
	return out
}

// assign settles item with v. Action results report their messages against
// the item.
func assign(c *execution.FieldContext, item *execution.SourceItem, v any) {
	ar, ok := v.(controller.ActionResult)
	if !ok {
		item.Resolve(v)
		return
	}
	sink := &itemSink{field: c, item: item}
	ar.Complete(sink)
	if sink.failed {
		item.Fail()
		return
	}
	item.Resolve(sink.value)
}

// itemSink receives the outcome of an action result for one item.
type itemSink struct {
	field  *execution.FieldContext
	item   *execution.SourceItem
	value  any
	failed bool
}

func (s *itemSink) SetResult(v any) { s.value = v }

func (s *itemSink) AddMessage(m *messages.Message) {
	if m.Path == nil {
		m.Path = s.item.Path()
	}
	if m.Severity.IsCritical() {
		s.failed = true
	}
	s.field.Messages.Add(m)
}
