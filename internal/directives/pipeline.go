package directives

import (
	"context"
	"fmt"
	"time"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

// NewPipeline builds the directive pipeline: validation, then the resolver.
func NewPipeline(ctx context.Context) *pipeline.Pipeline[*Context] {
	return pipeline.NewBuilder[*Context]("directive").
		UseFunc("ValidateDirective", ValidateDirective).
		UseFunc("InvokeDirectiveResolver", InvokeDirectiveResolver).
		Build(ctx)
}

// ValidateDirective checks that the directive is defined by the schema, is
// requested at a location it allows and receives the arguments it declares.
// Requests for a phase the directive does not run in end here without error.
func ValidateDirective(ctx context.Context, c *Context, next pipeline.Handler[*Context]) error {
	req := c.Request()
	d := req.Directive()
	switch {
	case d == nil:
		report(c, rules.DirectivesAreDefined, "The directive request has no directive definition.")
	case c.Schema.FindDirective(d.Name) != d:
		report(c, rules.DirectivesAreDefined, "The directive \"@%s\" is not a directive known to the target schema.", d.Name)
	case req.Phase() == schema.PhaseUnknown || !req.Location().IsKnown():
		report(c, rules.Directives, "The directive \"@%s\" was requested for phase %s at location %q.", d.Name, req.Phase(), req.Location())
	case !d.AllowsLocation(req.Location()):
		report(c, rules.DirectivesInValidLocations, "The directive \"@%s\" is not valid at location %s.", d.Name, req.Location())
	default:
		checkArguments(c, d, req)
	}
	if !c.IsSuccessful() || !d.Phases.Has(req.Phase()) {
		return nil
	}
	return next(ctx, c)
}

func checkArguments(c *Context, d *schema.Directive, req *schema.DirectiveRequest) {
	for _, a := range req.Arguments() {
		if argument(d, a.Name) == nil {
			report(c, rules.ArgumentNames, "Unknown argument %q on directive \"@%s\".", a.Name, d.Name)
		}
	}
	for _, def := range d.Arguments {
		v, ok := req.Argument(def.Name)
		if !ok || v == nil {
			if def.Type.IsNonNull() {
				report(c, rules.RequiredArguments, "Directive \"@%s\" argument %q of type %q is required, but it was not provided.", d.Name, def.Name, def.Type)
			}
			continue
		}
		if _, err := plan.CoerceInput(c.Schema, def.Type, v); err != nil {
			report(c, rules.ValuesOfCorrectType, "Directive \"@%s\" argument %q has an invalid value: %v", d.Name, def.Name, err)
		}
	}
}

func argument(d *schema.Directive, name string) *schema.InputValue {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func report(c *Context, ref rules.Ref, format string, args ...any) {
	c.Messages.Add(&messages.Message{
		Severity:   messages.Critical,
		Code:       messages.CodeInvalidDirective,
		Text:       fmt.Sprintf(format, args...),
		RuleNumber: ref.Number,
		RuleURL:    ref.URL(),
	})
}

// InvokeDirectiveResolver runs the directive's resolver. Directives declared
// without a resolver are annotations and do nothing.
func InvokeDirectiveResolver(ctx context.Context, c *Context, next pipeline.Handler[*Context]) error {
	req := c.Request()
	d := req.Directive()
	start := time.Now()
	var err error
	if d.Resolver != nil {
		if err = d.Resolver.ResolveDirective(ctx, c); err != nil {
			c.Fail(messages.CodeUnhandledError, err.Error(), err)
		}
	}
	if ctx.Err() != nil {
		c.Cancel()
	}
	eventbus.Publish(ctx, events.DirectiveApplied{
		RequestID: c.RequestID,
		Directive: d.Name,
		Phase:     req.Phase().String(),
		Location:  string(req.Location()),
		Origin:    req.Origin(),
		Err:       err,
		Duration:  time.Since(start),
	})
	if !c.IsSuccessful() {
		return nil
	}
	return next(ctx, c)
}
