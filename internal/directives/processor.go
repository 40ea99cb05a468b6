package directives

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/schema"
)

var errUnknownFailure = errors.New("unknown directive failure")

// Processor applies schema generation directives to every schema item.
type Processor struct {
	schema   *schema.Schema
	pipeline *pipeline.Pipeline[*Context]
}

func NewProcessor(ctx context.Context, s *schema.Schema) *Processor {
	return &Processor{schema: s, pipeline: NewPipeline(ctx)}
}

// Initialize applies the schema's directives exactly once. Concurrent callers
// wait for the first one and share its result.
func Initialize(ctx context.Context, s *schema.Schema) error {
	return s.EnsureInitialized(ctx, func(ctx context.Context, s *schema.Schema) error {
		return NewProcessor(ctx, s).ApplyDirectives(ctx)
	})
}

// ApplyDirectives runs, item by item and in declared order, every directive
// that has a schema generation phase. The first failure stops the pass and is
// returned as a *schema.ConfigurationError.
func (p *Processor) ApplyDirectives(ctx context.Context) error {
	for _, item := range p.schema.AllSchemaItems() {
		if err := p.applyItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) applyItem(ctx context.Context, item *schema.SchemaItem) error {
	applied := make(map[*schema.Directive]bool)
	for _, a := range item.Directives {
		d := p.schema.ResolveAppliedDirective(a)
		if d == nil {
			return &schema.ConfigurationError{Item: item.Name, Directive: a.Name, Err: errors.New("directive is not defined by the schema")}
		}
		if applied[d] && !d.IsRepeatable {
			return &schema.ConfigurationError{Item: item.Name, Directive: d.Name, Err: errors.New("directive is not repeatable and is applied more than once")}
		}
		applied[d] = true
		if !d.Phases.Has(schema.PhaseSchemaGeneration) {
			continue
		}

		args, err := arguments(d, a)
		if err != nil {
			return &schema.ConfigurationError{Item: item.Name, Directive: d.Name, Err: err}
		}
		req := schema.NewDirectiveRequest(d, item.Location, schema.PhaseSchemaGeneration, args, item.Target, item.Name)
		c := NewContext(p.schema, req)
		if err := p.pipeline.Invoke(ctx, c); err != nil {
			return &schema.ConfigurationError{Item: item.Name, Directive: d.Name, Err: err}
		}
		if !c.IsSuccessful() {
			causes := messages.CausesFromCriticals(c.Messages)
			if len(causes) == 0 {
				causes = []error{errUnknownFailure}
			}
			return &schema.ConfigurationError{
				Item:      item.Name,
				Directive: d.Name,
				Err:       messages.NewCausalError(fmt.Sprintf("@%s could not be applied to %s", d.Name, item.Name), causes...),
			}
		}
		if err := item.Replace(c.Target()); err != nil {
			return &schema.ConfigurationError{Item: item.Name, Directive: d.Name, Err: err}
		}
	}
	return nil
}

// arguments matches supplied values against the directive's parameters:
// positional values first, then values supplied by name, then defaults.
func arguments(d *schema.Directive, a *schema.AppliedDirective) ([]schema.ArgumentValue, error) {
	if len(a.Arguments) > len(d.Arguments) {
		return nil, fmt.Errorf("@%s declares %d arguments but %d were supplied", d.Name, len(d.Arguments), len(a.Arguments))
	}
	out := make([]schema.ArgumentValue, 0, len(d.Arguments))
	for i, def := range d.Arguments {
		switch v, named := a.Named[def.Name]; {
		case i < len(a.Arguments):
			out = append(out, schema.ArgumentValue{Name: def.Name, Value: a.Arguments[i]})
		case named:
			out = append(out, schema.ArgumentValue{Name: def.Name, Value: v})
		case def.DefaultValue != nil:
			out = append(out, schema.ArgumentValue{Name: def.Name, Value: def.DefaultValue})
		}
	}
	var unknown []string
	for name := range a.Named {
		if argument(d, name) == nil {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		out = append(out, schema.ArgumentValue{Name: name, Value: a.Named[name]})
	}
	return out, nil
}
