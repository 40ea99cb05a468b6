package directives

import (
	"context"

	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/schema"
)

// Outcome is the result of running a field's directives for one phase.
type Outcome struct {
	Target    any
	Cancelled bool
	Messages  *messages.Collection
}

func (o *Outcome) IsSuccessful() bool { return !o.Cancelled && o.Messages.IsSuccessful() }

// FieldDirectiveRunner applies request-time directives. Directives of one
// phase run one after another; none of them run concurrently.
type FieldDirectiveRunner struct {
	schema   *schema.Schema
	pipeline *pipeline.Pipeline[*Context]
	metrics  execution.Metrics
}

func NewFieldDirectiveRunner(s *schema.Schema, p *pipeline.Pipeline[*Context], m execution.Metrics) *FieldDirectiveRunner {
	return &FieldDirectiveRunner{schema: s, pipeline: p, metrics: m}
}

// Run applies requests in order. Each directive sees the target left by the
// one before it. The run stops at the first directive that cancels or fails.
func (r *FieldDirectiveRunner) Run(ctx context.Context, requestID string, requests []*schema.DirectiveRequest, target any) (*Outcome, error) {
	out := &Outcome{Target: target, Messages: messages.New()}
	for _, req := range requests {
		if d := req.Directive(); d != nil && !d.Phases.Has(req.Phase()) {
			continue
		}
		if ctx.Err() != nil {
			out.Cancelled = true
			return out, nil
		}
		c := NewContext(r.schema, req.ForPhase(req.Phase(), out.Target))
		c.RequestID = requestID
		if err := r.pipeline.Invoke(ctx, c); err != nil {
			return out, err
		}
		if r.metrics != nil && req.Directive() != nil {
			r.metrics.DirectiveApplied(req.Directive().Name, req.Phase().String())
		}
		out.Messages.AddRange(c.Messages)
		if c.IsCancelled() {
			out.Cancelled = true
			return out, nil
		}
		if !c.Messages.IsSuccessful() {
			return out, nil
		}
		out.Target = c.Target()
	}
	return out, nil
}
